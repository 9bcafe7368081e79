package employees

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/shiftbot/shiftbot/database/models"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
)

type memEmployeeRepo struct {
	nextID    int64
	employees map[int64]*models.Employee
	admins    map[int64]bool
}

func newMemEmployeeRepo() *memEmployeeRepo {
	return &memEmployeeRepo{
		employees: make(map[int64]*models.Employee),
		admins:    make(map[int64]bool),
	}
}

func (r *memEmployeeRepo) Create(_ context.Context, e *models.Employee) error {
	for _, existing := range r.employees {
		if existing.TelegramID == e.TelegramID {
			return repositories.ErrTelegramIDExists
		}
	}
	r.nextID++
	e.ID = r.nextID
	stored := *e
	r.employees[e.ID] = &stored
	return nil
}

func (r *memEmployeeRepo) GetByID(_ context.Context, id int64) (*models.Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return nil, repositories.ErrEmployeeNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *memEmployeeRepo) GetByTelegramID(_ context.Context, telegramID string) (*models.Employee, error) {
	for _, e := range r.employees {
		if e.TelegramID == telegramID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, repositories.ErrEmployeeNotFound
}

func (r *memEmployeeRepo) Update(_ context.Context, e *models.Employee) error {
	if _, ok := r.employees[e.ID]; !ok {
		return repositories.ErrEmployeeNotFound
	}
	stored := *e
	r.employees[e.ID] = &stored
	return nil
}

func (r *memEmployeeRepo) Deactivate(_ context.Context, id int64) error {
	e, ok := r.employees[id]
	if !ok {
		return repositories.ErrEmployeeNotFound
	}
	e.Active = false
	return nil
}

func (r *memEmployeeRepo) List(_ context.Context) ([]*models.Employee, error) {
	out := make([]*models.Employee, 0, len(r.employees))
	for id := int64(1); id <= r.nextID; id++ {
		if e, ok := r.employees[id]; ok {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memEmployeeRepo) IsAdmin(_ context.Context, employeeID int64) (bool, error) {
	return r.admins[employeeID], nil
}

func (r *memEmployeeRepo) GrantAdmin(_ context.Context, employeeID int64, _ string) error {
	r.admins[employeeID] = true
	return nil
}

func (r *memEmployeeRepo) AdminEmployeeIDs(_ context.Context) (map[int64]bool, error) {
	out := make(map[int64]bool, len(r.admins))
	for id := range r.admins {
		out[id] = true
	}
	return out, nil
}

func TestRegisterTrimsAndStores(t *testing.T) {
	svc := NewService(newMemEmployeeRepo())

	employee, err := svc.Register(context.Background(), "tg-100", "  Alice  ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", employee.Name)
	assert.Equal(t, "employee", employee.Role)
	assert.True(t, employee.Active)

	found, err := svc.Lookup(context.Background(), "tg-100")
	require.NoError(t, err)
	assert.Equal(t, employee.ID, found.ID)
}

func TestRegisterRejectsShortNames(t *testing.T) {
	svc := NewService(newMemEmployeeRepo())

	_, err := svc.Register(context.Background(), "tg-100", "A")
	assert.ErrorIs(t, err, ErrNameTooShort)

	_, err = svc.Register(context.Background(), "tg-100", "  x  ")
	assert.ErrorIs(t, err, ErrNameTooShort)
}

func TestRegisterDuplicateTelegramAccount(t *testing.T) {
	svc := NewService(newMemEmployeeRepo())

	_, err := svc.Register(context.Background(), "tg-100", "Alice")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "tg-100", "Alice Again")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestLookupUnknownAccount(t *testing.T) {
	svc := NewService(newMemEmployeeRepo())

	_, err := svc.Lookup(context.Background(), "tg-404")
	assert.ErrorIs(t, err, repositories.ErrEmployeeNotFound)
}

func TestRenameValidates(t *testing.T) {
	svc := NewService(newMemEmployeeRepo())
	employee, err := svc.Register(context.Background(), "tg-100", "Alice")
	require.NoError(t, err)

	_, err = svc.Rename(context.Background(), employee.ID, "B")
	assert.ErrorIs(t, err, ErrNameTooShort)

	renamed, err := svc.Rename(context.Background(), employee.ID, "Alicia")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", renamed.Name)
}

func TestDeactivateRetainsRecord(t *testing.T) {
	repo := newMemEmployeeRepo()
	svc := NewService(repo)

	employee, err := svc.Register(context.Background(), "tg-300", "Carol")
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), employee.ID))

	// Deactivation is an update, never a delete: the row survives with the
	// flag cleared so clock-ins, sales and quiz attempts keep a valid owner.
	found, err := svc.Get(context.Background(), employee.ID)
	require.NoError(t, err)
	assert.False(t, found.Active)
	assert.Equal(t, "Carol", found.Name)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSearchFuzzyMatchesNames(t *testing.T) {
	svc := NewService(newMemEmployeeRepo())
	for _, name := range []string{"Alice Johnson", "Bob Smith", "Alejandra Cruz"} {
		_, err := svc.Register(context.Background(), "tg-"+name, name)
		require.NoError(t, err)
	}

	results, err := svc.Search(context.Background(), "ali")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, e := range results {
		assert.NotEqual(t, "Bob Smith", e.Name)
	}

	all, err := svc.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGrantAndCheckAdmin(t *testing.T) {
	svc := NewService(newMemEmployeeRepo())
	employee, err := svc.Register(context.Background(), "tg-100", "Alice")
	require.NoError(t, err)

	isAdmin, err := svc.IsAdmin(context.Background(), employee.ID)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	require.NoError(t, svc.GrantAdmin(context.Background(), employee.ID, ""))
	isAdmin, err = svc.IsAdmin(context.Background(), employee.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)
}
