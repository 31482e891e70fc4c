package invreports

import (
	"fmt"
	"strings"

	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
)

// TxnType is the closed set of economic transaction types the ledger can
// carry. The numeric value doubles as the secondary sort key inside a day:
// buys come before sells, shorts before covers, trades before cash activity.
type TxnType int

const (
	TxnBuy TxnType = iota
	TxnBuyXfer
	TxnDividendReinvest
	TxnSell
	TxnSellXfer
	TxnShort
	TxnCover
	TxnMiscInc
	TxnMiscExp
	TxnDividend
	TxnDividendXfer
	TxnBank
)

// Rank returns the within-day ordering rank of the type.
func (t TxnType) Rank() int { return int(t) }

func (t TxnType) String() string {
	switch t {
	case TxnBuy:
		return "buy"
	case TxnBuyXfer:
		return "buy_xfer"
	case TxnDividendReinvest:
		return "dividend_reinvest"
	case TxnSell:
		return "sell"
	case TxnSellXfer:
		return "sell_xfer"
	case TxnShort:
		return "short"
	case TxnCover:
		return "cover"
	case TxnMiscInc:
		return "misc_inc"
	case TxnMiscExp:
		return "misc_exp"
	case TxnDividend:
		return "dividend"
	case TxnDividendXfer:
		return "dividend_xfer"
	case TxnBank:
		return "bank"
	default:
		return "unknown"
	}
}

// ParseTxnType parses a string into a TxnType.
func ParseTxnType(s string) (TxnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return TxnBuy, nil
	case "buy_xfer", "buyxfer":
		return TxnBuyXfer, nil
	case "dividend_reinvest", "dividendreinvest":
		return TxnDividendReinvest, nil
	case "sell":
		return TxnSell, nil
	case "sell_xfer", "sellxfer":
		return TxnSellXfer, nil
	case "short":
		return TxnShort, nil
	case "cover":
		return TxnCover, nil
	case "misc_inc", "miscinc":
		return TxnMiscInc, nil
	case "misc_exp", "miscexp":
		return TxnMiscExp, nil
	case "dividend":
		return TxnDividend, nil
	case "dividend_xfer", "dividendxfer":
		return TxnDividendXfer, nil
	case "bank":
		return TxnBank, nil
	default:
		return 0, fmt.Errorf("unknown transaction type: %q", s)
	}
}

// AccountType classifies the account a transaction leg touches. The
// normalizer routes each leg's amount into an economic-effect field based on
// this classification.
type AccountType int

const (
	AcctInvestment AccountType = iota
	AcctBank
	AcctSecurity
	AcctExpense
	AcctIncome
)

func (a AccountType) String() string {
	switch a {
	case AcctInvestment:
		return "investment"
	case AcctBank:
		return "bank"
	case AcctSecurity:
		return "security"
	case AcctExpense:
		return "expense"
	case AcctIncome:
		return "income"
	default:
		return "unknown"
	}
}

// ParseAccountType parses a string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "investment":
		return AcctInvestment, nil
	case "bank":
		return AcctBank, nil
	case "security":
		return AcctSecurity, nil
	case "expense":
		return AcctExpense, nil
	case "income":
		return AcctIncome, nil
	default:
		return 0, fmt.Errorf("unknown account type: %q", s)
	}
}

// RawLeg is one monetary leg of a ledger transaction, exactly as the host
// data store hands it over: integer cents for money and ten-thousandths of a
// unit for quantity.
type RawLeg struct {
	Account      string      // account the leg posts to
	AcctType     AccountType // classification of that account
	AmountCents  int64       // signed amount, in cents
	QuantityTenK int64       // signed quantity, in 1/10000 units
}

// RawTransaction is one transaction of the host ledger, with its legs.
type RawTransaction struct {
	ID       int64     // stable host identifier, final ordering tie-break
	Date     date.Date // posting date
	Type     TxnType   // economic type
	Account  string    // holding account
	Security string    // ticker of the traded security, empty for pure cash activity
	Legs     []RawLeg
}

// Account describes a holding account as supplied by the host layer.
type Account struct {
	Name         string
	Created      date.Date // account creation date
	OpeningCents int64     // opening cash balance in cents
	CurrencyID   string    // ISO currency code of the account's cash
}

// Security describes a tradeable as supplied by the host layer, carrying the
// identity references the aggregation tree groups by.
type Security struct {
	Ticker       string
	CurrencyID   string
	AssetType    string // e.g. "Stock", "Bond", "Fund"
	AssetSubtype string // e.g. "Large Cap", "Municipal"
}
