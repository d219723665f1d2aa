package treasury

import (
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/etnz/allocation"
	"github.com/jarcoal/httpmock"
)

// calculatorPage is the shape of the result table the calculator answers
// for a single $1,000 I bond issued 03/2020, redeemed 08/2025.
const calculatorPage = `<html><body>
<form method="post" action="SBCPrice">
<table>
<tr><th>Serial #</th><th>Series</th><th>Denom</th><th>Issue Date</th><th>Next Accrual</th><th>Final Maturity</th><th>Rate</th><th>Value</th></tr>
<tr>
<td>NA</td>
<td>I</td>
<td>$1,000</td>
<td>03/2020</td>
<td>09/2025</td>
<td>03/2050</td>
<td>3.94%</td>
<td>$1,268.40</td>
<td><input type="checkbox" name="sel"></td>
</tr>
</table>
</form>
</body></html>`

func TestParseRedemption(t *testing.T) {
	got, err := parseRedemption([]byte(calculatorPage))
	if err != nil {
		t.Fatalf("parseRedemption() = %v, want no error", err)
	}
	if want := "3.94%"; got.Rate != want {
		t.Errorf("parseRedemption().Rate = %q, want %q", got.Rate, want)
	}
	if want := 1268.40; got.Value != want {
		t.Errorf("parseRedemption().Value = %v, want %v", got.Value, want)
	}
}

func TestParseRedemptionErrors(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		wantErr string
	}{
		{
			name:    "no result table",
			page:    `<html><body>No bonds found.</body></html>`,
			wantErr: "found 0 table cells",
		},
		{
			name: "value is not a number",
			page: "<table>\n<td>a</td>\n<td>b</td>\n<td>c</td>\n<td>d</td>\n<td>e</td>\n<td>f</td>\n<td>1.00%</td>\n<td>n/a</td>\n</table>",
			wantErr: "cannot parse bond value",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseRedemption([]byte(tc.page))
			if err == nil {
				t.Fatal("parseRedemption() = nil error, want an error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("parseRedemption() error = %q, want it to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestRedemption(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var gotForm string
	httpmock.RegisterResponder("POST", calculatorURL,
		func(req *http.Request) (*http.Response, error) {
			if err := req.ParseForm(); err != nil {
				return nil, err
			}
			gotForm = req.PostForm.Encode()
			return httpmock.NewStringResponse(200, calculatorPage), nil
		})

	issue := allocation.NewDate(2020, time.March, 1)
	redeem := allocation.NewDate(2025, time.August, 1)

	got, err := New().Redemption("I", issue, 500, redeem)
	if err != nil {
		t.Fatalf("Redemption() = %v, want no error", err)
	}
	// url.Values.Encode sorts keys.
	wantForm := "Denomination=1000&IssueDate=03%2F2020&RedemptionDate=08%2F2025&Series=I&btnAdd.x=CALCULATE"
	if gotForm != wantForm {
		t.Errorf("posted form = %q, want %q", gotForm, wantForm)
	}
	if want := "3.94%"; got.Rate != want {
		t.Errorf("Redemption().Rate = %q, want %q", got.Rate, want)
	}
	// A $500 bond is worth half the $1,000 the calculator priced.
	if want := 1268.40 / 2; math.Abs(got.Value-want) > 1e-9 {
		t.Errorf("Redemption().Value = %v, want %v", got.Value, want)
	}

	// EE bonds are issued at half face value, the redemption doubles.
	got, err = New().Redemption("EE", issue, 1000, redeem)
	if err != nil {
		t.Fatalf("Redemption() = %v, want no error", err)
	}
	if want := 2 * 1268.40; math.Abs(got.Value-want) > 1e-9 {
		t.Errorf("Redemption().Value = %v, want %v", got.Value, want)
	}
}
