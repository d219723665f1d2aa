package allocation

import (
	"encoding/json"
	"strconv"
)

// TaxLot is a single purchase lot of a traded asset: when it was bought, how
// many units and at what unit cost.
type TaxLot struct {
	Date     Date
	Quantity float64
	UnitCost Money
}

// shortTermDays is the holding period, in days, under which a lot's term is
// reported as the day count itself rather than ST. Selling within this
// window matters for wash sale accounting.
const shortTermDays = 61

// Term classifies the holding period of the lot at asOf. Lots held for at
// most 61 days report the day count, lots held over a year report "LT" and
// everything in between reports "ST".
func (l TaxLot) Term(asOf Date) string {
	days := asOf.Sub(l.Date)
	if days <= shortTermDays {
		return strconv.Itoa(days)
	}
	if asOf.After(l.Date.AddYears(1)) {
		return "LT"
	}
	return "ST"
}

func (l TaxLot) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("date", l.Date)
	w.Append("quantity", l.Quantity)
	w.Append("unit_cost", l.UnitCost)
	return json.Marshal(w)
}

func (l *TaxLot) UnmarshalJSON(data []byte) error {
	var doc struct {
		Date     Date    `json:"date"`
		Quantity float64 `json:"quantity"`
		UnitCost float64 `json:"unit_cost"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return validationErrorf("invalid tax lot document: %v", err)
	}
	l.Date = doc.Date
	l.Quantity = doc.Quantity
	l.UnitCost = Dollars(doc.UnitCost)
	return nil
}

// LotGain is the unrealized gain or loss of one tax lot at the current unit
// price.
type LotGain struct {
	Date     Date
	Quantity float64
	Cost     Money
	Gain     Money
	GainPct  Percent
	Term     string
}

// lotGains computes the unrealized gain of each lot at the given unit price.
// asOf is the day used to classify the holding period.
func lotGains(lots []TaxLot, price Money, asOf Date) []LotGain {
	gains := make([]LotGain, 0, len(lots))
	for _, lot := range lots {
		gains = append(gains, LotGain{
			Date:     lot.Date,
			Quantity: lot.Quantity,
			Cost:     lot.UnitCost.MulFloat(lot.Quantity),
			Gain:     price.Sub(lot.UnitCost).MulFloat(lot.Quantity),
			GainPct:  Percent((price.AsFloat()/lot.UnitCost.AsFloat() - 1) * 100),
			Term:     lot.Term(asOf),
		})
	}
	return gains
}

var (
	_ json.Marshaler   = TaxLot{}
	_ json.Unmarshaler = (*TaxLot)(nil)
)
