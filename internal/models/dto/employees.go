package dto

type CreateEmployeeRequest struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Department string  `json:"department"`
	Position   string  `json:"position"`
	Salary     float64 `json:"salary"`
	Phone      string  `json:"phone"`
	HireDate   string  `json:"hire_date"`
	Address    string  `json:"address"`
}
