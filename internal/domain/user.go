package domain

// Role is a portal role.
type Role string

const (
	RoleHR      Role = "hr"
	RoleFinance Role = "finance"
	RoleTeacher Role = "teacher"
)

// User is an entry of the Users collection.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"passwordHash"` // argon2id, hex(salt)$hex(hash)
}
