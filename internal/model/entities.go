package model

import "time"

// Priority of a task or deliverable.
type Priority string

const (
	PriorityLow  Priority = "low"
	PriorityMed  Priority = "med"
	PriorityHigh Priority = "high"
)

// Parent pointers are plain ids, never object references; child sets are
// derived by store queries. A zero id means "no parent at that level".

type Project struct {
	ID               int       `json:"id"`
	Title            string    `json:"title"`
	Progress         int       `json:"progress"` // integer percentage [0,100]
	ProjectManagerID int       `json:"project_manager_id"`
	MemberIDs        []int     `json:"member_ids"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Phase struct {
	ID        int       `json:"id"`
	ProjectID int       `json:"project_id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Deliverable struct {
	ID             int       `json:"id"`
	ProjectID      int       `json:"project_id"`
	PhaseID        int       `json:"phase_id"`
	Title          string    `json:"title"`
	Priority       Priority  `json:"priority"`
	PriorityNumber int       `json:"priority_number"`
	DueDate        time.Time `json:"due_date"`
	Status         Status    `json:"status"`
	AssigneeIDs    []int     `json:"assignee_ids"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Task struct {
	ID            int       `json:"id"`
	ProjectID     int       `json:"project_id"`
	PhaseID       int       `json:"phase_id"`       // optional, 0 = none
	DeliverableID int       `json:"deliverable_id"` // optional, 0 = none
	Text          string    `json:"text"`
	Priority      Priority  `json:"priority"`
	DueDate       time.Time `json:"due_date"`
	Status        Status    `json:"status"`
	AssigneeID    int       `json:"assignee_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
