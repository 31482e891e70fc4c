package invreports

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
)

/*
	{
	    "accounts": [
	        {"name": "Brokerage", "created": "2010-01-04", "openingCents": 100000, "currency": "USD"}
	    ],
	    "securities": [
	        {"ticker": "ACME", "currency": "USD", "assetType": "Stock", "assetSubtype": "Large Cap"}
	    ],
	    "transactions": [
	        {
	            "id": 1, "date": "2010-02-02", "type": "buy",
	            "account": "Brokerage", "security": "ACME",
	            "legs": [
	                {"account": "ACME", "acctType": "security", "amountCents": 379700, "quantityTenK": 1000000}
	            ]
	        }
	    ],
	    "prices": [
	        {"ticker": "ACME", "on": "2010-02-26", "price": 38.12}
	    ],
	    "splits": [
	        {"ticker": "ACME", "on": "2011-03-01", "numerator": 2, "denominator": 1}
	    ]
	}
*/

// LoadLedgerFile reads a host export file into a Ledger.
func LoadLedgerFile(path string) (*Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger export: %w", err)
	}
	defer f.Close()
	l, err := LoadLedger(f)
	if err != nil {
		return nil, fmt.Errorf("in %q: %w", path, err)
	}
	log.Printf("loaded %d accounts, %d securities, %d transactions from %q",
		len(l.Accounts), len(l.Securities), len(l.Transactions), path)
	return l, nil
}

// LoadLedger parses the host application's JSON export: accounts,
// securities, raw transactions, and the price/split history.
func LoadLedger(r io.Reader) (*Ledger, error) {
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("invalid export json: %w", err)
	}

	l := &Ledger{Prices: NewPriceTable()}

	for i, jacct := range jList(jobj, "$.accounts") {
		acct, err := parseAccount(jacct)
		if err != nil {
			return nil, fmt.Errorf("account #%d: %w", i, err)
		}
		l.Accounts = append(l.Accounts, acct)
	}
	for i, jsec := range jList(jobj, "$.securities") {
		sec, err := parseSecurity(jsec)
		if err != nil {
			return nil, fmt.Errorf("security #%d: %w", i, err)
		}
		l.Securities = append(l.Securities, sec)
	}
	for i, jtxn := range jList(jobj, "$.transactions") {
		txn, err := parseTransaction(jtxn)
		if err != nil {
			return nil, fmt.Errorf("transaction #%d: %w", i, err)
		}
		l.Transactions = append(l.Transactions, txn)
	}
	for i, jprice := range jList(jobj, "$.prices") {
		ticker, err := jString(jprice, "ticker")
		if err != nil {
			return nil, fmt.Errorf("price #%d: %w", i, err)
		}
		on, err := jDate(jprice, "on")
		if err != nil {
			return nil, fmt.Errorf("price #%d (%s): %w", i, ticker, err)
		}
		price, err := jFloat(jprice, "price")
		if err != nil {
			return nil, fmt.Errorf("price #%d (%s): %w", i, ticker, err)
		}
		l.Prices.SetPrice(ticker, on, price)
	}
	for i, jsplit := range jList(jobj, "$.splits") {
		ticker, err := jString(jsplit, "ticker")
		if err != nil {
			return nil, fmt.Errorf("split #%d: %w", i, err)
		}
		on, err := jDate(jsplit, "on")
		if err != nil {
			return nil, fmt.Errorf("split #%d (%s): %w", i, ticker, err)
		}
		num, err := jInt(jsplit, "numerator")
		if err != nil {
			return nil, fmt.Errorf("split #%d (%s): %w", i, ticker, err)
		}
		den, err := jInt(jsplit, "denominator")
		if err != nil {
			return nil, fmt.Errorf("split #%d (%s): %w", i, ticker, err)
		}
		if num <= 0 || den <= 0 {
			return nil, fmt.Errorf("split #%d (%s): ratio %d:%d is not positive", i, ticker, num, den)
		}
		l.Prices.AddSplit(ticker, Split{Date: on, Numerator: num, Denominator: den})
	}
	return l, nil
}

func parseAccount(jobj any) (Account, error) {
	name, err := jString(jobj, "name")
	if err != nil {
		return Account{}, err
	}
	created, err := jDate(jobj, "created")
	if err != nil {
		return Account{}, fmt.Errorf("%q: %w", name, err)
	}
	opening, _ := jInt(jobj, "openingCents") // absent means zero
	currency, _ := jString(jobj, "currency")
	return Account{Name: name, Created: created, OpeningCents: opening, CurrencyID: currency}, nil
}

func parseSecurity(jobj any) (Security, error) {
	ticker, err := jString(jobj, "ticker")
	if err != nil {
		return Security{}, err
	}
	currency, _ := jString(jobj, "currency")
	atype, _ := jString(jobj, "assetType")
	asub, _ := jString(jobj, "assetSubtype")
	return Security{Ticker: ticker, CurrencyID: currency, AssetType: atype, AssetSubtype: asub}, nil
}

func parseTransaction(jobj any) (RawTransaction, error) {
	id, err := jInt(jobj, "id")
	if err != nil {
		return RawTransaction{}, err
	}
	on, err := jDate(jobj, "date")
	if err != nil {
		return RawTransaction{}, fmt.Errorf("id %d: %w", id, err)
	}
	typeName, err := jString(jobj, "type")
	if err != nil {
		return RawTransaction{}, fmt.Errorf("id %d: %w", id, err)
	}
	txnType, err := ParseTxnType(typeName)
	if err != nil {
		return RawTransaction{}, fmt.Errorf("id %d: %w", id, err)
	}
	account, err := jString(jobj, "account")
	if err != nil {
		return RawTransaction{}, fmt.Errorf("id %d: %w", id, err)
	}
	security, _ := jString(jobj, "security") // empty for pure cash activity

	txn := RawTransaction{ID: id, Date: on, Type: txnType, Account: account, Security: security}
	for i, jleg := range jList(jobj, "$.legs") {
		leg, err := parseLeg(jleg)
		if err != nil {
			return RawTransaction{}, fmt.Errorf("id %d, leg #%d: %w", id, i, err)
		}
		txn.Legs = append(txn.Legs, leg)
	}
	return txn, nil
}

func parseLeg(jobj any) (RawLeg, error) {
	account, err := jString(jobj, "account")
	if err != nil {
		return RawLeg{}, err
	}
	typeName, err := jString(jobj, "acctType")
	if err != nil {
		return RawLeg{}, err
	}
	acctType, err := ParseAccountType(typeName)
	if err != nil {
		return RawLeg{}, err
	}
	amount, _ := jInt(jobj, "amountCents")
	qty, _ := jInt(jobj, "quantityTenK")
	return RawLeg{Account: account, AcctType: acctType, AmountCents: amount, QuantityTenK: qty}, nil
}

// jList evaluates a jsonpath expression expected to yield a list. A missing
// section is an empty list, not an error.
func jList(jobj any, path string) []any {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil
	}
	// jsonpath is never clear about whether it returns a list or a single
	// answer; a single answer becomes a one-element list.
	if jlist, ok := jval.([]any); ok {
		return jlist
	}
	if jval != nil {
		return []any{jval}
	}
	return nil
}

func jString(jobj any, key string) (string, error) {
	m, ok := jobj.(map[string]any)
	if !ok {
		return "", fmt.Errorf("not a json object")
	}
	s, ok := m[key].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("missing %q", key)
	}
	return s, nil
}

func jFloat(jobj any, key string) (float64, error) {
	m, ok := jobj.(map[string]any)
	if !ok {
		return 0, fmt.Errorf("not a json object")
	}
	v, ok := m[key].(float64)
	if !ok {
		return 0, fmt.Errorf("missing numeric %q", key)
	}
	return v, nil
}

func jInt(jobj any, key string) (int64, error) {
	v, err := jFloat(jobj, key)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// jDate accepts both date encodings the host emits: an ISO-8601 string or
// the compact YYYYMMDD integer.
func jDate(jobj any, key string) (date.Date, error) {
	if m, ok := jobj.(map[string]any); ok {
		if n, ok := m[key].(float64); ok {
			d, err := date.FromInt(int(n))
			if err != nil {
				return date.Date{}, fmt.Errorf("%q: %w", key, err)
			}
			return d, nil
		}
	}
	s, err := jString(jobj, key)
	if err != nil {
		return date.Date{}, err
	}
	d, perr := date.Parse(s)
	if perr != nil {
		return date.Date{}, fmt.Errorf("%q: %w", key, perr)
	}
	return d, nil
}
