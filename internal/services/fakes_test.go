package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"
	"tierly/internal/config"
	"tierly/internal/models/db_models"
	"tierly/internal/repositories"
	mem "tierly/pkg/memcache"
	"tierly/pkg/utils"
)

func intPtr(v int) *int { return &v }

// testCatalog lists plans out of price order on purpose.
func testCatalog() *repositories.Catalog {
	return &repositories.Catalog{
		Plans: []db_models.Plan{
			{ID: "platinum", Name: "platinum", DisplayName: "Platinum", PriceMonthly: decimal.NewFromInt(2980), IsActive: true,
				StripePriceIDMonthly: strPtr("price_plat_m"), StripePriceIDYearly: strPtr("price_plat_y")},
			{ID: "free", Name: "free", DisplayName: "Free", PriceMonthly: decimal.Zero, IsActive: true},
			{ID: "gold", Name: "gold", DisplayName: "Gold", PriceMonthly: decimal.NewFromInt(980), IsActive: true,
				StripePriceIDMonthly: strPtr("price_gold_m")},
			{ID: "legacy", Name: "legacy", DisplayName: "Legacy", PriceMonthly: decimal.NewFromInt(500), IsActive: false},
		},
		Features: []db_models.Feature{
			{ID: "ai_requests", Name: "ai_requests", DisplayName: "AI requests", IsActive: true},
			{ID: "export", Name: "export", DisplayName: "Export", IsActive: true},
			{ID: "beta_lab", Name: "beta_lab", DisplayName: "Beta lab", IsActive: false},
		},
		PlanFeatures: []db_models.PlanFeature{
			{PlanID: "free", FeatureID: "ai_requests", Enabled: false, LimitValue: intPtr(0)},
			{PlanID: "gold", FeatureID: "ai_requests", Enabled: true, LimitValue: intPtr(100)},
			{PlanID: "gold", FeatureID: "export", Enabled: true, LimitValue: intPtr(10)},
			{PlanID: "gold", FeatureID: "beta_lab", Enabled: true},
			{PlanID: "platinum", FeatureID: "ai_requests", Enabled: true},
			{PlanID: "platinum", FeatureID: "export", Enabled: true},
		},
	}
}

func strPtr(s string) *string { return &s }

// memStore implements every repository interface over plain slices.
type memStore struct {
	mu sync.Mutex

	catalog      *repositories.Catalog
	catalogErr   error
	catalogLoads int

	users map[uuid.UUID]*db_models.User
	subs  []*db_models.Subscription

	usage       []db_models.UsageLog
	countErr    error
	insertErr   error
	countCalls  int
	insertCtxOK bool
}

func newMemStore() *memStore {
	return &memStore{
		catalog: testCatalog(),
		users:   make(map[uuid.UUID]*db_models.User),
	}
}

func (m *memStore) addUser(planID string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.users[id] = &db_models.User{BaseModel: db_models.BaseModel{ID: id}, Name: "Test", Email: "t@example.com", PlanID: planID}
	return id
}

func (m *memStore) userPlan(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].PlanID
}

func (m *memStore) hasUser(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[id]
	return ok
}

func (m *memStore) addUsage(userID uuid.UUID, featureID string, at time.Time, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		m.usage = append(m.usage, db_models.UsageLog{
			ID:        uuid.New(),
			CreatedAt: at.Unix(),
			UserID:    userID,
			FeatureID: featureID,
		})
	}
}

// plan repository

func (m *memStore) GetActivePlansWithFeatures(_ context.Context) ([]db_models.Plan, error) {
	if m.catalogErr != nil {
		return nil, m.catalogErr
	}
	var out []db_models.Plan
	for _, p := range m.catalog.Plans {
		if !p.IsActive {
			continue
		}
		p.Features = nil
		for _, pf := range m.catalog.PlanFeatures {
			if pf.PlanID == p.ID {
				f, _ := m.catalog.Feature(pf.FeatureID)
				pf.Feature = *f
				p.Features = append(p.Features, pf)
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) GetCatalog(_ context.Context) (*repositories.Catalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogLoads++
	if m.catalogErr != nil {
		return nil, m.catalogErr
	}
	return m.catalog, nil
}

// user repository

func (m *memStore) InsertTx(_ context.Context, user *db_models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; ok {
		return utils.ErrUserAlreadyExists
	}
	u := *user
	m.users[user.ID] = &u
	return nil
}

func (m *memStore) FindById(_ context.Context, id uuid.UUID) (*db_models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) SetStripeCustomerID(_ context.Context, id uuid.UUID, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return utils.ErrRecordNotFound
	}
	u.StripeCustomerID = &customerID
	return nil
}

// subscription repository

func (m *memStore) findSub(stripeID string) *db_models.Subscription {
	for _, s := range m.subs {
		if s.StripeSubscriptionID == stripeID {
			return s
		}
	}
	return nil
}

func (m *memStore) SyncPlanAndSubscription(_ context.Context, sub *db_models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[sub.UserID]
	if !ok {
		return utils.ErrRecordNotFound
	}
	u.PlanID = sub.PlanID
	if existing := m.findSub(sub.StripeSubscriptionID); existing != nil {
		id, created := existing.ID, existing.CreatedAt
		*existing = *sub
		existing.ID, existing.CreatedAt = id, created
		return nil
	}
	cp := *sub
	cp.ID = uuid.New()
	cp.CreatedAt = int64(len(m.subs) + 1)
	m.subs = append(m.subs, &cp)
	return nil
}

func (m *memStore) CancelAndDemote(_ context.Context, userID uuid.UUID, freePlanID, stripeSubscriptionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return utils.ErrRecordNotFound
	}
	u.PlanID = freePlanID
	if s := m.findSub(stripeSubscriptionID); s != nil {
		s.Status = db_models.SubStatusCanceled
	}
	return nil
}

func (m *memStore) ChangeUserPlan(_ context.Context, userID uuid.UUID, planID string, cancelOpen bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return utils.ErrRecordNotFound
	}
	u.PlanID = planID
	if !cancelOpen {
		return nil
	}
	for _, s := range m.subs {
		if s.UserID != userID {
			continue
		}
		for _, open := range db_models.OpenStatuses {
			if s.Status == open {
				s.Status = db_models.SubStatusCanceled
				s.CancelAtPeriodEnd = true
				break
			}
		}
	}
	return nil
}

func (m *memStore) UpdateStatusByStripeID(_ context.Context, stripeSubscriptionID string, status db_models.SubscriptionStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.findSub(stripeSubscriptionID)
	if s == nil {
		return 0, nil
	}
	s.Status = status
	return 1, nil
}

func (m *memStore) latest(userID uuid.UUID, keep func(*db_models.Subscription) bool) *db_models.Subscription {
	var best *db_models.Subscription
	for _, s := range m.subs {
		if s.UserID == userID && keep(s) && (best == nil || s.CreatedAt > best.CreatedAt) {
			best = s
		}
	}
	if best == nil {
		return nil
	}
	cp := *best
	return &cp
}

func (m *memStore) FindLatestByUser(_ context.Context, userID uuid.UUID) (*db_models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest(userID, func(*db_models.Subscription) bool { return true }), nil
}

func (m *memStore) FindLatestActiveByUser(_ context.Context, userID uuid.UUID) (*db_models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest(userID, func(s *db_models.Subscription) bool {
		return s.Status == db_models.SubStatusActive || s.Status == db_models.SubStatusTrialing || s.Status == db_models.SubStatusPastDue
	}), nil
}

func (m *memStore) FindByStripeID(_ context.Context, stripeSubscriptionID string) (*db_models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.findSub(stripeSubscriptionID)
	if s == nil {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// usage repository

func (m *memStore) Insert(ctx context.Context, entry *db_models.UsageLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCtxOK = ctx.Err() == nil
	if m.insertErr != nil {
		return m.insertErr
	}
	e := *entry
	e.ID = uuid.New()
	m.usage = append(m.usage, e)
	return nil
}

func (m *memStore) CountSince(_ context.Context, userID uuid.UUID, featureID string, since int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countCalls++
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, e := range m.usage {
		if e.UserID == userID && e.FeatureID == featureID && e.CreatedAt >= since {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListRecent(_ context.Context, userID uuid.UUID, limit int) ([]db_models.UsageLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db_models.UsageLog
	for _, e := range m.usage {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var (
	_ repositories.IPlanRepository        = (*memStore)(nil)
	_ repositories.UserRepository         = (*memStore)(nil)
	_ repositories.SubscriptionRepository = (*memStore)(nil)
	_ repositories.UsageRepository        = (*memStore)(nil)
)

// fixedNow is mid-month so the window start is unambiguous.
var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.Local)

type fixture struct {
	store   *memStore
	catalog CatalogServiceInterface
	usage   UsageServiceInterface
	subs    SubscriptionServiceInterface
}

func newFixture() *fixture {
	store := newMemStore()
	log := zap.NewNop()
	catalog := NewCatalogService(store, mem.Noop[*repositories.Catalog]{}, config.CatalogConfig{
		FreePlanID: "free",
		CacheTTL:   time.Minute,
	}, log)
	usage := NewUsageServiceWithClock(store, catalog, DefaultMeteringPolicies(), func() time.Time { return fixedNow }, log)
	subs := NewSubscriptionService(store, store, catalog, log)
	return &fixture{store: store, catalog: catalog, usage: usage, subs: subs}
}

type fakeCompleter struct {
	provider string
	calls    int
	last     utils.CompletionRequest
	result   utils.CompletionResult
	err      error
}

func (f *fakeCompleter) Provider() string {
	if f.provider == "" {
		return "openai"
	}
	return f.provider
}

func (f *fakeCompleter) Complete(_ context.Context, req utils.CompletionRequest) (utils.CompletionResult, error) {
	f.calls++
	f.last = req
	return f.result, f.err
}

// fakeGateway records provider calls; webhook verification uses the real Stripe code.
type fakeGateway struct {
	verifier *utils.StripeGateway

	customersCreated int
	lastCheckout     utils.CheckoutSessionInput
	canceled         []string
	remote           map[string]utils.RemoteSubscription
	err              error
}

func newFakeGateway(webhookSecret string) *fakeGateway {
	return &fakeGateway{
		verifier: utils.NewStripeGateway("sk_test_unused", webhookSecret),
		remote:   make(map[string]utils.RemoteSubscription),
	}
}

func (f *fakeGateway) CreateCustomer(_ context.Context, _, _ string, _ map[string]string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.customersCreated++
	return "cus_test", nil
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, in utils.CheckoutSessionInput) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	f.lastCheckout = in
	return "https://checkout.stripe.test/cs_1", "cs_1", nil
}

func (f *fakeGateway) CreatePortalSession(_ context.Context, customerID, returnURL string) (string, error) {
	return "https://billing.stripe.test/" + customerID + "?return=" + returnURL, nil
}

func (f *fakeGateway) GetSubscription(_ context.Context, subscriptionID string) (utils.RemoteSubscription, error) {
	sub, ok := f.remote[subscriptionID]
	if !ok {
		return utils.RemoteSubscription{}, utils.ErrExternalService
	}
	return sub, nil
}

func (f *fakeGateway) CancelAtPeriodEnd(_ context.Context, subscriptionID string) error {
	f.canceled = append(f.canceled, subscriptionID)
	return nil
}

func (f *fakeGateway) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	return f.verifier.ConstructEvent(payload, signature)
}
