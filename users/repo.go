package users

// UserRepo stores user accounts. Usernames and emails are unique, compared case-insensitively.
type UserRepo interface {
	// Create inserts a new user and fails with ErrUserExists if the username or email is taken.
	Create(user *User) error
	// Upsert updates a user, or inserts it when the ID is unknown. It fails with ErrUserExists
	// rather than take over another user's username or email.
	Upsert(user *User) error
	GetByID(ID string) (*User, error)
	GetByUsername(username string) (*User, error)
	GetByEmail(email string) (*User, error)
	List(offset, limit int) ([]*User, error)
	CountByRole(role Role) (int, error)
}
