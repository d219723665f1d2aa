// Package allocation provides a set of functions and types for planning a
// personal investment portfolio around a desired asset allocation. It is
// designed to be local-first and auditable, ensuring users have full control
// and transparency over their financial data.
//
// The core functionalities include:
//   - Asset Allocation: Expressing the desired allocation as a tree of asset
//     classes (e.g., All split into Equity and Bonds, Equity split into US
//     and Intl) and comparing it against the actual allocation of the
//     portfolio at any depth.
//   - Accounts and Assets: Modeling accounts (e.g., taxable, tax-deferred,
//     tax-exempt) holding tickers, Vanguard funds, US savings bonds and
//     manually valued assets, each mapping its value onto asset classes.
//   - Live Pricing: Fetching quotes and fund values from public endpoints,
//     memoized in-process and cached on disk so repeated runs stay fast and
//     work offline.
//   - What-If Analysis: Layering hypothetical buys and sells over the real
//     values to explore changes before placing any trade.
//   - Analysis Tools: Finding tax loss harvesting candidates, flagging asset
//     classes outside their rebalance bands, and spreading new cash over an
//     account to pull the allocation back toward the desired one.
//   - Performance Tracking: Recording dated checkpoints of the portfolio
//     value and the cash flowing in and out, and deriving growth and internal
//     rates of return over standard trailing windows.
//   - Data Persistence: Handling the encoding and decoding of portfolio and
//     checkpoint data to and from human-readable JSON documents.
//
// This package serves as the foundational logic for the `pal` command-line
// tool, ensuring that all operations are consistent and based on a single
// source of truth.
package allocation
