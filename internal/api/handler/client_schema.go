package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type createClientRequest struct {
	CompanyName    string  `json:"company_name" validate:"required"`
	ContactName    string  `json:"contact_name" validate:"required"`
	Email          string  `json:"email" validate:"required,email"`
	Phone          string  `json:"phone"`
	Budget         float64 `json:"budget" validate:"gte=0"`
	BudgetCurrency string  `json:"budget_currency"`
	Source         string  `json:"source"`
	Referrer       string  `json:"referrer"`
	Requirements   string  `json:"requirements"`
	Timeline       string  `json:"timeline"`
	DecisionMaker  string  `json:"decision_maker"`
	Stage          int     `json:"stage"`
	AssignedBDE    string  `json:"assigned_bde" validate:"required"`
}

// updateClientRequest is an explicit partial update: absent fields are left
// untouched. Unknown payload keys are rejected by bindStrict.
type updateClientRequest struct {
	CompanyName    *string  `json:"company_name,omitempty"`
	ContactName    *string  `json:"contact_name,omitempty"`
	Email          *string  `json:"email,omitempty"`
	Phone          *string  `json:"phone,omitempty"`
	Budget         *float64 `json:"budget,omitempty"`
	BudgetCurrency *string  `json:"budget_currency,omitempty"`
	Source         *string  `json:"source,omitempty"`
	Referrer       *string  `json:"referrer,omitempty"`
	Requirements   *string  `json:"requirements,omitempty"`
	Timeline       *string  `json:"timeline,omitempty"`
	DecisionMaker  *string  `json:"decision_maker,omitempty"`
	Stage          *int     `json:"stage,omitempty"`
	AssignedBDE    *string  `json:"assigned_bde,omitempty"`
	IsDropped      *bool    `json:"is_dropped,omitempty"`
	DropReason     *string  `json:"drop_reason,omitempty"`
}

type addNoteRequest struct {
	Text string `json:"text" validate:"required"`
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Role     string `json:"role" validate:"required,oneof=super_admin admin bde"`
	Password string `json:"password" validate:"required,min=8"`
}

// updateUserRequest is an explicit partial update for accounts.
type updateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type createTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	ClientID    string `json:"client_id" validate:"required"`
	AssignedTo  string `json:"assigned_to" validate:"required"`
	Deadline    string `json:"deadline" validate:"required"`
}

type updateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending done"`
}

type attachmentResponse struct {
	Message    string `json:"message"`
	Attachment any    `json:"attachment"`
}
