package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"tripbudget/config"
	"tripbudget/models"
)

// MemoryLedgerStore 进程内账本存储，用于开发与测试。
// 每个行程一把锁，fn 在预算副本上执行，成功后整体替换。
type MemoryLedgerStore struct {
	mu      sync.Mutex
	ledgers map[uint]*memoryLedger
	now     func() time.Time
}

type memoryLedger struct {
	mu       sync.Mutex
	budget   models.Budget
	expenses []models.Expense
}

// NewMemoryLedgerStore 创建内存账本
func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{ledgers: map[uint]*memoryLedger{}, now: time.Now}
}

func (s *MemoryLedgerStore) ledger(itineraryID uint) *memoryLedger {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.ledgers[itineraryID]
	if !ok {
		l = &memoryLedger{budget: models.NewBudget(itineraryID)}
		s.ledgers[itineraryID] = l
	}
	return l
}

// Apply 实现账本写入
func (s *MemoryLedgerStore) Apply(ctx context.Context, itineraryID uint, fn func(budget *models.Budget) (*models.Expense, error)) (*models.Budget, *models.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	l := s.ledger(itineraryID)
	l.mu.Lock()
	defer l.mu.Unlock()

	working := l.budget.Clone()
	expense, err := fn(&working)
	if err != nil {
		return nil, nil, err
	}

	var saved *models.Expense
	if expense != nil {
		e := expense.Clone()
		working.ExpenseCount++
		e.ItineraryID = itineraryID
		e.Seq = working.ExpenseCount
		for i := range e.Shares {
			e.Shares[i].ExpenseID = e.ID
			e.Shares[i].Position = i
		}
		l.expenses = append(l.expenses, e)
		out := e.Clone()
		saved = &out
	}

	working.UpdatedAt = s.now().UTC()
	l.budget = working
	committed := working.Clone()
	return &committed, saved, nil
}

// GetBudget 实现账本读取
func (s *MemoryLedgerStore) GetBudget(ctx context.Context, itineraryID uint) (*models.Budget, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := s.ledger(itineraryID)
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.budget.Clone()
	return &b, nil
}

// ListExpenses 按追加顺序返回副本
func (s *MemoryLedgerStore) ListExpenses(ctx context.Context, itineraryID uint) ([]models.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := s.ledger(itineraryID)
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Expense, 0, len(l.expenses))
	for _, e := range l.expenses {
		out = append(out, e.Clone())
	}
	return out, nil
}

// PageExpenses 最新条目在前
func (s *MemoryLedgerStore) PageExpenses(ctx context.Context, itineraryID uint, offset, limit int) ([]models.Expense, int64, error) {
	all, err := s.ListExpenses(ctx, itineraryID)
	if err != nil {
		return nil, 0, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Seq > all[j].Seq })
	total := int64(len(all))
	if offset >= len(all) {
		return []models.Expense{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// MemoryDirectory 进程内成员目录
type MemoryDirectory struct {
	mu          sync.RWMutex
	itineraries map[uint]*models.Membership
	users       map[uint]models.Profile
}

// NewMemoryDirectory 创建内存成员目录
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		itineraries: map[uint]*models.Membership{},
		users:       map[uint]models.Profile{},
	}
}

// AddUser 登记用户展示信息
func (d *MemoryDirectory) AddUser(p models.Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[p.ID] = p
}

// AddItinerary 登记行程及其所有者
func (d *MemoryDirectory) AddItinerary(itineraryID, ownerID uint) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.itineraries[itineraryID] = models.NewMembership(itineraryID, ownerID, nil)
}

// AddCollaborator 追加协作者，已存在时更新角色
func (d *MemoryDirectory) AddCollaborator(itineraryID, memberID uint, role string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.itineraries[itineraryID]
	if !ok {
		return
	}
	collaborators := append([]models.Collaborator{}, m.Collaborators...)
	for i := range collaborators {
		if collaborators[i].MemberID == memberID {
			collaborators[i].Role = role
			d.itineraries[itineraryID] = models.NewMembership(itineraryID, m.OwnerID, collaborators)
			return
		}
	}
	collaborators = append(collaborators, models.Collaborator{ItineraryID: itineraryID, MemberID: memberID, Role: role})
	d.itineraries[itineraryID] = models.NewMembership(itineraryID, m.OwnerID, collaborators)
}

// RemoveCollaborator 移除协作者，账本中的历史记录保持不变
func (d *MemoryDirectory) RemoveCollaborator(itineraryID, memberID uint) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.itineraries[itineraryID]
	if !ok {
		return
	}
	kept := make([]models.Collaborator, 0, len(m.Collaborators))
	for _, c := range m.Collaborators {
		if c.MemberID != memberID {
			kept = append(kept, c)
		}
	}
	d.itineraries[itineraryID] = models.NewMembership(itineraryID, m.OwnerID, kept)
}

// Membership 实现成员查询，返回快照
func (d *MemoryDirectory) Membership(_ context.Context, itineraryID uint) (*models.Membership, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.itineraries[itineraryID]
	if !ok {
		return nil, models.NotFoundError("itinerary", itineraryID)
	}
	return models.NewMembership(m.ItineraryID, m.OwnerID, m.Collaborators), nil
}

// Profiles 实现展示信息查询
func (d *MemoryDirectory) Profiles(_ context.Context, memberIDs []uint) (map[uint]models.Profile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[uint]models.Profile, len(memberIDs))
	for _, id := range memberIDs {
		if p, ok := d.users[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// SeedMemoryDirectory 按配置预置用户与行程
func SeedMemoryDirectory(d *MemoryDirectory, seed config.SeedConfig) {
	for _, u := range seed.Users {
		d.AddUser(models.Profile{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	for _, it := range seed.Itineraries {
		d.AddItinerary(it.ID, it.Owner)
		for _, c := range it.Collaborators {
			d.AddCollaborator(it.ID, c.ID, c.Role)
		}
	}
}
