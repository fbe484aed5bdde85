package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/notify"
	"server/internal/vetchat"
)

// The fakes embed their interface so only the methods a test touches need
// implementations; calling anything else panics, which is what we want.

type fakeUsers struct {
	domain.UserRepository
	byID    map[string]*domain.User
	areaIDs []string
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) Create(ctx context.Context, user *domain.User) error {
	for _, u := range f.byID {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	if f.byID == nil {
		f.byID = make(map[string]*domain.User)
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUsers) ListIDsByArea(ctx context.Context, city, area, excludeID string) ([]string, error) {
	out := make([]string, 0, len(f.areaIDs))
	for _, id := range f.areaIDs {
		if id != excludeID {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeDonations struct {
	domain.DonationRepository
	posts     map[string]*domain.DonationPost
	forms     map[string]*domain.AdoptionForm
	createErr error
	upvoteErr error
	acceptErr error
}

func (f *fakeDonations) Create(ctx context.Context, post *domain.DonationPost) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.posts == nil {
		f.posts = make(map[string]*domain.DonationPost)
	}
	f.posts[post.ID] = post
	return nil
}

func (f *fakeDonations) GetByID(ctx context.Context, id string) (*domain.DonationPost, error) {
	if p, ok := f.posts[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeDonations) Update(ctx context.Context, post *domain.DonationPost) error {
	f.posts[post.ID] = post
	return nil
}

func (f *fakeDonations) Delete(ctx context.Context, id string) error {
	if _, ok := f.posts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakeDonations) Upvote(ctx context.Context, postID, userID string) error {
	if f.upvoteErr != nil {
		return f.upvoteErr
	}
	if _, ok := f.posts[postID]; !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (f *fakeDonations) SubmitAdoptionForm(ctx context.Context, form *domain.AdoptionForm) error {
	if f.forms == nil {
		f.forms = make(map[string]*domain.AdoptionForm)
	}
	for _, existing := range f.forms {
		if existing.DonationPostID == form.DonationPostID && existing.ApplicantID == form.ApplicantID {
			return domain.ErrAlreadyApplied
		}
	}
	f.forms[form.ID] = form
	return nil
}

func (f *fakeDonations) GetAdoptionForm(ctx context.Context, formID string) (*domain.AdoptionForm, error) {
	if form, ok := f.forms[formID]; ok {
		return form, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeDonations) AcceptAdoptionForm(ctx context.Context, formID string) (*domain.AdoptionForm, error) {
	if f.acceptErr != nil {
		return nil, f.acceptErr
	}
	form, ok := f.forms[formID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	form.Status = domain.AdoptionAccepted
	if post, ok := f.posts[form.DonationPostID]; ok {
		post.IsAvailable = false
	}
	return form, nil
}

type fakeJobs struct {
	domain.JobRepository
	jobs      map[string]*domain.JobPost
	apps      map[string]*domain.Application
	endErr    error
	selectErr error
}

func (f *fakeJobs) Create(ctx context.Context, job *domain.JobPost) error {
	if f.jobs == nil {
		f.jobs = make(map[string]*domain.JobPost)
	}
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobs) GetByID(ctx context.Context, id string) (*domain.JobPost, error) {
	if j, ok := f.jobs[id]; ok {
		return j, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeJobs) Apply(ctx context.Context, app *domain.Application) error {
	job, ok := f.jobs[app.JobPostID]
	if !ok {
		return domain.ErrNotFound
	}
	if job.Status != domain.JobOpen {
		return domain.ErrInvalidTransition
	}
	if f.apps == nil {
		f.apps = make(map[string]*domain.Application)
	}
	f.apps[app.ID] = app
	return nil
}

func (f *fakeJobs) GetApplication(ctx context.Context, id string) (*domain.Application, error) {
	if app, ok := f.apps[id]; ok {
		return app, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeJobs) SelectCaregiver(ctx context.Context, jobID, applicationID string) (*domain.Application, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	app, ok := f.apps[applicationID]
	if !ok || app.JobPostID != jobID {
		return nil, domain.ErrNotFound
	}
	job := f.jobs[jobID]
	if job.Status != domain.JobOpen {
		return nil, domain.ErrInvalidTransition
	}
	job.Status = domain.JobOngoing
	job.SelectedCaregiverID = &app.CaregiverID
	app.Status = domain.ApplicationAccepted
	return app, nil
}

func (f *fakeJobs) EndJob(ctx context.Context, jobID string, review *domain.Review) error {
	if f.endErr != nil {
		return f.endErr
	}
	job, ok := f.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if job.Status != domain.JobOngoing {
		return domain.ErrInvalidTransition
	}
	job.Status = domain.JobClosed
	return nil
}

func (f *fakeJobs) Cancel(ctx context.Context, jobID string) error {
	job, ok := f.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if job.Status != domain.JobOpen {
		return domain.ErrInvalidTransition
	}
	job.Status = domain.JobClosed
	return nil
}

type fakeCaregivers struct {
	domain.CaregiverRepository
	byUserID map[string]*domain.Caregiver
	byID     map[string]*domain.Caregiver
}

func (f *fakeCaregivers) GetByUserID(ctx context.Context, userID string) (*domain.Caregiver, error) {
	if c, ok := f.byUserID[userID]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCaregivers) GetByID(ctx context.Context, id string) (*domain.Caregiver, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

type fakeProducts struct {
	domain.ProductRepository
	byID map[string]*domain.Product
}

func (f *fakeProducts) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProducts) GetMany(ctx context.Context, ids []string) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeOrders struct {
	domain.OrderRepository
	created   []*domain.Order
	createErr error
}

func (f *fakeOrders) Create(ctx context.Context, order *domain.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, order)
	return nil
}

type fakeNotifications struct {
	domain.NotificationRepository
	mu   sync.Mutex
	rows []domain.Notification
}

func (f *fakeNotifications) CreateMany(ctx context.Context, notifications []domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, notifications...)
	return nil
}

type fakeMedia struct {
	uploaded  []string
	deleted   []string
	uploadErr error
}

func (f *fakeMedia) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploaded = append(f.uploaded, key)
	return "http://media.test/" + key, nil
}

func (f *fakeMedia) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeCart struct {
	items    map[string][]domain.CartItem
	cleared  []string
	itemsErr error
}

func (f *fakeCart) Add(ctx context.Context, userID, productID string, quantity int) error {
	if f.items == nil {
		f.items = make(map[string][]domain.CartItem)
	}
	f.items[userID] = append(f.items[userID], domain.CartItem{ProductID: productID, Quantity: quantity})
	return nil
}

func (f *fakeCart) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	return nil
}

func (f *fakeCart) Remove(ctx context.Context, userID, productID string) error { return nil }

func (f *fakeCart) Items(ctx context.Context, userID string) ([]domain.CartItem, error) {
	if f.itemsErr != nil {
		return nil, f.itemsErr
	}
	return f.items[userID], nil
}

func (f *fakeCart) Clear(ctx context.Context, userID string) error {
	f.cleared = append(f.cleared, userID)
	return nil
}

type testEnv struct {
	app           *App
	users         *fakeUsers
	donations     *fakeDonations
	jobs          *fakeJobs
	caregivers    *fakeCaregivers
	products      *fakeProducts
	orders        *fakeOrders
	notifications *fakeNotifications
	media         *fakeMedia
	cart          *fakeCart
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:         &fakeUsers{byID: map[string]*domain.User{}},
		donations:     &fakeDonations{posts: map[string]*domain.DonationPost{}, forms: map[string]*domain.AdoptionForm{}},
		jobs:          &fakeJobs{jobs: map[string]*domain.JobPost{}, apps: map[string]*domain.Application{}},
		caregivers:    &fakeCaregivers{byUserID: map[string]*domain.Caregiver{}, byID: map[string]*domain.Caregiver{}},
		products:      &fakeProducts{byID: map[string]*domain.Product{}},
		orders:        &fakeOrders{},
		notifications: &fakeNotifications{},
		media:         &fakeMedia{},
		cart:          &fakeCart{items: map[string][]domain.CartItem{}},
	}
	env.app = &App{
		Logger:        zerolog.Nop(),
		JWTSecret:     "test-secret",
		Users:         env.users,
		Caregivers:    env.caregivers,
		Donations:     env.donations,
		Jobs:          env.jobs,
		Products:      env.products,
		Orders:        env.orders,
		Notifications: env.notifications,
		Media:         env.media,
		Cart:          env.cart,
		Notifier:      notify.New(env.users, env.notifications),
		Vet:           vetchat.StaticResponder{},
	}
	return env
}

// doAs executes the request through the given router with user identity in
// the context, mirroring what the auth middleware injects.
func doAs(router http.Handler, req *http.Request, userID string, role domain.UserRole) *httptest.ResponseRecorder {
	req = req.WithContext(middleware.ContextWithUser(req.Context(), userID, role))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
