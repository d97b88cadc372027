package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"cmticaret/models"
	"cmticaret/payment"
	"cmticaret/repository"

	"go.mongodb.org/mongo-driver/bson"
)

// In-memory fakes shared by the service tests.

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[string]*models.Cart
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string]*models.Cart)}
}

func (r *fakeCartRepo) Get(_ context.Context, userID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[userID]
	if !ok {
		return nil, nil
	}
	copied := *cart
	copied.Items = append([]models.CartItem(nil), cart.Items...)
	return &copied, nil
}

func (r *fakeCartRepo) Save(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *cart
	copied.Items = append([]models.CartItem(nil), cart.Items...)
	r.carts[cart.UserID] = &copied
	return nil
}

func (r *fakeCartRepo) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

type fakeProductRepo struct {
	mu         sync.Mutex
	products   map[string]*models.Product
	increments map[string]int
}

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	r := &fakeProductRepo{
		products:   make(map[string]*models.Product),
		increments: make(map[string]int),
	}
	for _, p := range products {
		copied := *p
		r.products[p.ID] = &copied
	}
	return r
}

func (r *fakeProductRepo) FindByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProductRepo) Find(context.Context, repository.ProductFilter) ([]models.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *p
	r.products[p.ID] = &copied
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, id string, _ bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Stock < qty {
		return repository.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (r *fakeProductRepo) IncrementStock(_ context.Context, id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Stock += qty
	r.increments[id] += qty
	return nil
}

func (r *fakeProductRepo) FindLowStock(context.Context) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Product
	for _, p := range r.products {
		if p.IsLowStock() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindOutOfStock(context.Context) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Product
	for _, p := range r.products {
		if p.IsOutOfStock() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) stock(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].Stock
}

func (r *fakeProductRepo) setStock(id string, stock int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[id].Stock = stock
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*models.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *fakeOrderRepo) Find(_ context.Context, filter repository.OrderFilter) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	return nil
}

func (r *fakeOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []*models.Payment
}

func (r *fakePaymentRepo) Create(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, p)
	return nil
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakePaymentRepo) FindByOrder(_ context.Context, orderID string) ([]models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Payment
	for _, p := range r.payments {
		if p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	byEmail map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]*models.User),
	}
	for _, u := range users {
		r.byID[u.ID] = u
		r.byEmail[u.Email] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return repository.ErrDuplicate
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) FindAll(context.Context, int, int) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.byID {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

type fakeIdemStore struct {
	mu   sync.Mutex
	keys map[string]string
}

func newFakeIdemStore() *fakeIdemStore {
	return &fakeIdemStore{keys: make(map[string]string)}
}

func (s *fakeIdemStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *fakeIdemStore) Set(_ context.Context, key, orderID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = orderID
	return nil
}

type fakeDraftStore struct {
	mu     sync.Mutex
	drafts map[string][]byte
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{drafts: make(map[string][]byte)}
}

func (s *fakeDraftStore) Put(_ context.Context, token string, draft any, _ time.Duration) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[token] = data
	return nil
}

func (s *fakeDraftStore) Take(_ context.Context, token string, draft any) (bool, error) {
	s.mu.Lock()
	data, ok := s.drafts[token]
	delete(s.drafts, token)
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, draft)
}

type fakeAlertStore struct {
	mu   sync.Mutex
	sets map[string]map[string]bool
}

func newFakeAlertStore() *fakeAlertStore {
	return &fakeAlertStore{sets: make(map[string]map[string]bool)}
}

func (s *fakeAlertStore) Alerted(_ context.Context, condition string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.sets[condition]))
	for id := range s.sets[condition] {
		out[id] = true
	}
	return out, nil
}

func (s *fakeAlertStore) Replace(_ context.Context, condition string, productIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		set[id] = true
	}
	s.sets[condition] = set
	return nil
}

// recordingProvider counts invocations and plays back scripted outcomes.
type recordingProvider struct {
	mu            sync.Mutex
	formCalls     int
	verifyCalls   int
	refundCalls   int
	refundAmounts []float64

	formResult   *payment.FormResult
	formErr      error
	verifyResult *payment.VerifyResult
	verifyErr    error
}

func (p *recordingProvider) Name() string { return "recording" }

func (p *recordingProvider) CreatePaymentForm(context.Context, *payment.OrderDraft) (*payment.FormResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.formCalls++
	if p.formErr != nil {
		return nil, p.formErr
	}
	if p.formResult != nil {
		return p.formResult, nil
	}
	return &payment.FormResult{PaymentPageURL: "https://pay.example/form", Token: "tok-1"}, nil
}

func (p *recordingProvider) VerifyPayment(context.Context, string) (*payment.VerifyResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.verifyCalls++
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	if p.verifyResult != nil {
		return p.verifyResult, nil
	}
	return &payment.VerifyResult{Succeeded: true, PaymentID: "pay-1"}, nil
}

func (p *recordingProvider) CreateRefund(_ context.Context, _ string, amount float64, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refundCalls++
	p.refundAmounts = append(p.refundAmounts, amount)
	return nil
}

func (p *recordingProvider) refunded() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]float64(nil), p.refundAmounts...)
}

func (p *recordingProvider) calls() (form, verify, refund int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.formCalls, p.verifyCalls, p.refundCalls
}

// countingNotifier records every notification instead of sending mail.
type countingNotifier struct {
	mu            sync.Mutex
	confirmations int
	statusMails   int
	welcomes      int
	lowAlerts     [][]models.Product
	outAlerts     [][]models.Product
	sendErr       error
}

func (n *countingNotifier) SendOrderConfirmation(context.Context, *models.User, *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations++
	return n.sendErr
}

func (n *countingNotifier) SendOrderStatusUpdate(context.Context, *models.User, *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statusMails++
	return n.sendErr
}

func (n *countingNotifier) SendWelcome(context.Context, *models.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomes++
}

func (n *countingNotifier) SendLowStockAlert(_ context.Context, products []models.Product) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sendErr != nil {
		return n.sendErr
	}
	n.lowAlerts = append(n.lowAlerts, products)
	return nil
}

func (n *countingNotifier) SendOutOfStockAlert(_ context.Context, products []models.Product) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sendErr != nil {
		return n.sendErr
	}
	n.outAlerts = append(n.outAlerts, products)
	return nil
}
