package models

// Ledger is the full collection of accounts keyed by id. Iteration follows
// insertion (or load) order.
type Ledger struct {
	accounts map[string]*Account
	order    []string
}

func NewLedger() *Ledger {
	return &Ledger{accounts: make(map[string]*Account)}
}

func (l *Ledger) Get(id string) (*Account, bool) {
	a, ok := l.accounts[id]
	return a, ok
}

// Put inserts a or replaces the account with the same id, keeping its position.
func (l *Ledger) Put(a *Account) {
	if _, exists := l.accounts[a.ID]; !exists {
		l.order = append(l.order, a.ID)
	}
	l.accounts[a.ID] = a
}

func (l *Ledger) Delete(id string) bool {
	if _, exists := l.accounts[id]; !exists {
		return false
	}
	delete(l.accounts, id)
	for i, v := range l.order {
		if v == id {
			l.order = append(l.order[:i:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

func (l *Ledger) Len() int {
	return len(l.order)
}

// Accounts returns the accounts in ledger order. The pointers are live.
func (l *Ledger) Accounts() []*Account {
	out := make([]*Account, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.accounts[id])
	}
	return out
}

// Clone deep-copies the ledger so it can be staged and discarded.
func (l *Ledger) Clone() *Ledger {
	cp := &Ledger{
		accounts: make(map[string]*Account, len(l.accounts)),
		order:    make([]string, len(l.order)),
	}
	copy(cp.order, l.order)
	for id, a := range l.accounts {
		cp.accounts[id] = a.Clone()
	}
	return cp
}
