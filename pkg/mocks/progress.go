package mocks

import "github.com/user/imganimate/pkg/ports"

// Progress is a mock implementation of ports.Progress.
type Progress struct {
	Totals   []int
	Added    int
	Finishes int
}

func (m *Progress) Start(total int, description string) {
	m.Totals = append(m.Totals, total)
}

func (m *Progress) Add(n int) {
	m.Added += n
}

func (m *Progress) Finish() {
	m.Finishes++
}

var _ ports.Progress = (*Progress)(nil)
