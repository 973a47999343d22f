package handlers

type registerReq struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type fundReq struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type payReq struct {
	To     string `json:"to" validate:"required"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
}

type productReq struct {
	Name        string `json:"name" validate:"required,max=128"`
	Price       int64  `json:"price" validate:"required,gt=0"`
	Description string `json:"description"`
}

type buyReq struct {
	ProductID string `json:"product_id" validate:"required"`
}

// statementEntry matches the external statement shape: amounts under "amt",
// the post-transaction snapshot under "updated_bal", ISO-8601 timestamps.
type statementEntry struct {
	Kind       string `json:"kind"`
	Amt        int64  `json:"amt"`
	UpdatedBal int64  `json:"updated_bal"`
	Timestamp  string `json:"timestamp"`
}
