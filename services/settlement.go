package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stablebank/config"

	"github.com/shopspring/decimal"
)

// SettlementClient - клиент шлюза для зеркалирования операций в блокчейн
//
// Settlement is strictly best-effort: the local ledger commits regardless of
// the gateway outcome, and a failed call is logged and reconciled out-of-band.
// The client is built once from config and injected, never read from globals.
type SettlementClient struct {
	baseURL   string
	programID string
	authToken string
	client    *http.Client
}

func NewSettlementClient(cfg *config.Config) *SettlementClient {
	return &SettlementClient{
		baseURL:   cfg.SettlementBaseURL,
		programID: cfg.SettlementProgramID,
		authToken: cfg.SettlementAuthToken,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether a gateway is configured at all.
func (s *SettlementClient) Enabled() bool {
	return s != nil && s.baseURL != ""
}

type settlementResponse struct {
	Signature       string `json:"signature"`
	MortgageAccount string `json:"mortgage_account"`
}

func (s *SettlementClient) post(ctx context.Context, path string, payload interface{}) (*settlementResponse, []byte, error) {
	url := fmt.Sprintf("%s/programs/%s%s", s.baseURL, s.programID, path)
	jsonData, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("settlement request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 && resp.StatusCode != 201 {
		return nil, body, fmt.Errorf("settlement gateway returned %d: %s", resp.StatusCode, string(body))
	}

	var result settlementResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, body, fmt.Errorf("failed to decode settlement response: %w", err)
	}
	return &result, body, nil
}

// RegisterMortgage mirrors a newly created mortgage on-chain and returns the
// mortgage account address.
func (s *SettlementClient) RegisterMortgage(ctx context.Context, borrower string, loanAmount, propertyValue decimal.Decimal, termMonths int, annualRatePct decimal.Decimal) (string, []byte, error) {
	payload := map[string]interface{}{
		"borrower":       borrower,
		"loan_amount":    loanAmount.StringFixed(2),
		"property_value": propertyValue.StringFixed(2),
		"loan_duration":  termMonths,
		// rate travels as basis points, matching the on-chain account layout
		"interest_rate_bps": annualRatePct.Mul(decimal.NewFromInt(100)).IntPart(),
	}
	result, raw, err := s.post(ctx, "/mortgages", payload)
	if err != nil {
		return "", raw, err
	}
	return result.MortgageAccount, raw, nil
}

// SubmitPayment mirrors a mortgage payment on-chain and returns the chain
// transaction signature.
func (s *SettlementClient) SubmitPayment(ctx context.Context, borrower, mortgageRef string, amount decimal.Decimal) (string, []byte, error) {
	payload := map[string]interface{}{
		"borrower": borrower,
		"mortgage": mortgageRef,
		"amount":   amount.StringFixed(2),
	}
	result, raw, err := s.post(ctx, "/payments", payload)
	if err != nil {
		return "", raw, err
	}
	return result.Signature, raw, nil
}
