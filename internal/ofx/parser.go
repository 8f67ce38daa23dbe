// Package ofx imports OFX/QFX bank and credit card statements as ledger
// transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags missing their closing bracket at end of line.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser converts OFX statements into ledger transactions.
type Parser struct {
	accountID string
	category  string
}

// Option configures a Parser.
type Option func(*Parser)

// WithAccount books every imported transaction against accountID instead of
// the account number found in the statement.
func WithAccount(accountID string) Option {
	return func(p *Parser) { p.accountID = accountID }
}

// WithCategory tags transactions that have no inferred category.
func WithCategory(category string) Option {
	return func(p *Parser) { p.category = category }
}

// NewParser creates a new OFX parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be INFO, WARN or ERROR
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file and returns its transactions in statement
// order.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		txns, err := p.convertList(ctx, stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID))
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txns...)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		txns, err := p.convertList(ctx, stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID))
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txns...)
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

func (p *Parser) convertList(ctx context.Context, list []ofxgo.Transaction, statementAccount string) ([]model.Transaction, error) {
	accountID := statementAccount
	if p.accountID != "" {
		accountID = p.accountID
	}

	transactions := make([]model.Transaction, 0, len(list))
	for _, ofxTx := range list {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tx, ok := p.convertTransaction(ofxTx, accountID)
		if !ok {
			slog.Warn("Skipping OFX transaction with unusable amount",
				"fitid", string(ofxTx.FiTID),
				"account", accountID)
			continue
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// convertTransaction maps one OFX entry onto a ledger transaction. Amounts
// are stored unsigned; the direction moves into Kind.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) (model.Transaction, bool) {
	signed, _ := ofxTx.TrnAmt.Float64()
	if math.IsNaN(signed) || math.IsInf(signed, 0) {
		return model.Transaction{}, false
	}

	trnType := strings.ToUpper(fmt.Sprintf("%v", ofxTx.TrnType))

	tx := model.Transaction{
		AccountID:   accountID,
		Kind:        kindFor(trnType, signed),
		Amount:      math.Abs(signed),
		Description: p.extractMerchantName(ofxTx),
		Category:    categoryFor(trnType),
		OccurredAt:  ofxTx.DtPosted.Time,
	}
	if tx.Category == "" {
		tx.Category = p.category
	}

	if fitID := strings.TrimSpace(string(ofxTx.FiTID)); fitID != "" {
		tx.ID = fmt.Sprintf("ofx-%s-%s", accountID, fitID)
	} else {
		tx.ID = uuid.NewString()
	}

	tx.Hash = tx.GenerateHash()
	return tx, true
}

// kindFor decides whether an entry draws on credit or pays it down. The
// transaction type wins when it is unambiguous; otherwise the sign decides,
// with OFX reporting debits as negative amounts.
func kindFor(trnType string, signed float64) model.TransactionKind {
	switch trnType {
	case "DEBIT", "POS", "ATM", "CHECK", "FEE", "SRVCHG", "DIRECTDEBIT", "CASH":
		return model.KindWithdrawal
	case "CREDIT", "PAYMENT", "DEP", "DIRECTDEP", "INT", "DIV":
		return model.KindPayment
	}
	if signed > 0 {
		return model.KindPayment
	}
	return model.KindWithdrawal
}

func categoryFor(trnType string) string {
	switch trnType {
	case "INT":
		return "interest"
	case "FEE", "SRVCHG":
		return "fees"
	case "ATM", "CASH":
		return "cash"
	}
	return ""
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// PAYEE is usually cleaner than NAME
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " dates
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

// GetAccounts returns the sorted, unique account numbers in the file. These
// are the account IDs ParseFile books against when no account override is set.
func (p *Parser) GetAccounts(ctx context.Context, reader io.Reader) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankAcctFrom.AcctID != "" {
			seen[string(stmt.BankAcctFrom.AcctID)] = true
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.CCAcctFrom.AcctID != "" {
			seen[string(stmt.CCAcctFrom.AcctID)] = true
		}
	}

	accounts := make([]string, 0, len(seen))
	for acct := range seen {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)
	return accounts, nil
}
