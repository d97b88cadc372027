package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Iyzico implements Provider against the iyzico checkout-form REST API.
type Iyzico struct {
	apiKey     string
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewIyzico(apiKey, secretKey, baseURL string) *Iyzico {
	return &Iyzico{
		apiKey:    apiKey,
		secretKey: secretKey,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (i *Iyzico) Name() string { return "iyzico" }

// ---- iyzico API request/response structs ----

type iyzicoBuyer struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Surname             string `json:"surname"`
	Email               string `json:"email"`
	GsmNumber           string `json:"gsmNumber,omitempty"`
	IdentityNumber      string `json:"identityNumber"`
	RegistrationAddress string `json:"registrationAddress"`
	City                string `json:"city"`
	Country             string `json:"country"`
	IP                  string `json:"ip"`
}

type iyzicoAddress struct {
	ContactName string `json:"contactName"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Address     string `json:"address"`
}

type iyzicoBasketItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category1 string `json:"category1"`
	ItemType  string `json:"itemType"`
	Price     string `json:"price"`
}

type iyzicoInitializeRequest struct {
	Locale              string             `json:"locale"`
	ConversationID      string             `json:"conversationId"`
	Price               string             `json:"price"`
	PaidPrice           string             `json:"paidPrice"`
	Currency            string             `json:"currency"`
	BasketID            string             `json:"basketId"`
	PaymentGroup        string             `json:"paymentGroup"`
	CallbackURL         string             `json:"callbackUrl"`
	EnabledInstallments []int              `json:"enabledInstallments"`
	Buyer               iyzicoBuyer        `json:"buyer"`
	ShippingAddress     iyzicoAddress      `json:"shippingAddress"`
	BillingAddress      iyzicoAddress      `json:"billingAddress"`
	BasketItems         []iyzicoBasketItem `json:"basketItems"`
}

type iyzicoInitializeResponse struct {
	Status         string `json:"status"`
	ErrorMessage   string `json:"errorMessage"`
	Token          string `json:"token"`
	PaymentPageURL string `json:"paymentPageUrl"`
}

type iyzicoRetrieveRequest struct {
	Locale string `json:"locale"`
	Token  string `json:"token"`
}

type iyzicoRetrieveResponse struct {
	Status         string `json:"status"`
	ErrorMessage   string `json:"errorMessage"`
	PaymentStatus  string `json:"paymentStatus"`
	PaymentID      string `json:"paymentId"`
	ConversationID string `json:"conversationId"`
	PaidPrice      string `json:"paidPrice"`
}

type iyzicoRefundRequest struct {
	Locale               string `json:"locale"`
	PaymentTransactionID string `json:"paymentTransactionId"`
	Price                string `json:"price"`
	Currency             string `json:"currency"`
}

type iyzicoRefundResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
}

// ---- Provider implementation ----

// CreatePaymentForm initializes a hosted checkout form and returns the
// page URL the browser must be redirected to.
func (i *Iyzico) CreatePaymentForm(ctx context.Context, draft *OrderDraft) (*FormResult, error) {
	price := fmt.Sprintf("%.2f", draft.Total)

	items := make([]iyzicoBasketItem, 0, len(draft.Items))
	for _, item := range draft.Items {
		items = append(items, iyzicoBasketItem{
			ID:        item.ID,
			Name:      item.Name,
			Category1: item.Category,
			ItemType:  "PHYSICAL",
			Price:     fmt.Sprintf("%.2f", item.Price),
		})
	}

	name, surname := splitName(draft.Buyer.Name)
	address := iyzicoAddress{
		ContactName: draft.Buyer.Name,
		City:        draft.City,
		Country:     "Turkey",
		Address:     draft.AddressLine,
	}

	reqBody := iyzicoInitializeRequest{
		Locale:              "tr",
		ConversationID:      draft.ConversationID,
		Price:               price,
		PaidPrice:           price,
		Currency:            draft.Currency,
		BasketID:            draft.ConversationID,
		PaymentGroup:        "PRODUCT",
		CallbackURL:         draft.CallbackURL,
		EnabledInstallments: []int{1, 2, 3, 6, 9},
		Buyer: iyzicoBuyer{
			ID:                  draft.Buyer.ID,
			Name:                name,
			Surname:             surname,
			Email:               draft.Buyer.Email,
			GsmNumber:           draft.Buyer.Phone,
			IdentityNumber:      "11111111111",
			RegistrationAddress: draft.AddressLine,
			City:                draft.City,
			Country:             "Turkey",
			IP:                  "0.0.0.0",
		},
		ShippingAddress: address,
		BillingAddress:  address,
		BasketItems:     items,
	}

	var resp iyzicoInitializeResponse
	if err := i.doRequest(ctx, "/payment/iyzipos/checkoutform/initialize/auth/ecom", reqBody, &resp); err != nil {
		return nil, fmt.Errorf("iyzico CreatePaymentForm: %w", err)
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("iyzico CreatePaymentForm: %s", resp.ErrorMessage)
	}

	return &FormResult{
		PaymentPageURL: resp.PaymentPageURL,
		Token:          resp.Token,
	}, nil
}

// VerifyPayment exchanges the callback token for the provider-reported
// payment outcome.
func (i *Iyzico) VerifyPayment(ctx context.Context, token string) (*VerifyResult, error) {
	reqBody := iyzicoRetrieveRequest{Locale: "tr", Token: token}

	var resp iyzicoRetrieveResponse
	if err := i.doRequest(ctx, "/payment/iyzipos/checkoutform/auth/ecom/detail", reqBody, &resp); err != nil {
		return nil, fmt.Errorf("iyzico VerifyPayment: %w", err)
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("iyzico VerifyPayment: %s", resp.ErrorMessage)
	}

	paid, _ := strconv.ParseFloat(resp.PaidPrice, 64)
	return &VerifyResult{
		Succeeded:      resp.PaymentStatus == "SUCCESS",
		PaymentID:      resp.PaymentID,
		ConversationID: resp.ConversationID,
		FailureReason:  resp.ErrorMessage,
		PaidAmount:     paid,
	}, nil
}

// CreateRefund refunds a previously captured transaction.
func (i *Iyzico) CreateRefund(ctx context.Context, paymentID string, amount float64, currency string) error {
	reqBody := iyzicoRefundRequest{
		Locale:               "tr",
		PaymentTransactionID: paymentID,
		Price:                fmt.Sprintf("%.2f", amount),
		Currency:             currency,
	}

	var resp iyzicoRefundResponse
	if err := i.doRequest(ctx, "/payment/refund", reqBody, &resp); err != nil {
		return fmt.Errorf("iyzico CreateRefund: %w", err)
	}
	if resp.Status != "success" {
		return fmt.Errorf("iyzico CreateRefund: %s", resp.ErrorMessage)
	}
	return nil
}

// ---- HTTP helper ----

func (i *Iyzico) doRequest(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	randomKey := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authorizationHeader(i.apiKey, i.secretKey, randomKey, path, payload))
	req.Header.Set("x-iyzi-rnd", randomKey)

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// authorizationHeader computes the IYZWSv2 HMAC-SHA256 scheme: the
// signature covers randomKey + request path + request body.
func authorizationHeader(apiKey, secretKey, randomKey, path string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(randomKey + path))
	mac.Write(payload)
	signature := hex.EncodeToString(mac.Sum(nil))

	auth := fmt.Sprintf("apiKey:%s&randomKey:%s&signature:%s", apiKey, randomKey, signature)
	return "IYZWSv2 " + base64.StdEncoding.EncodeToString([]byte(auth))
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) < 2 {
		return full, full
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}
