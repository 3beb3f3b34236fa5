package domain

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	PhoneNumber  string `db:"phone_number" json:"phoneNumber"`
	PasswordHash string `db:"password_hash" json:"-"`
	Verified     bool   `db:"verified" json:"verified"`
	Role         string `db:"role" json:"role"`

	OTPCode    string     `db:"otp_code" json:"-"`
	OTPExpires *time.Time `db:"otp_expires" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
