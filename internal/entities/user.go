package entities

import "time"

const (
	RoleCustomer   = "customer"
	RoleDriver     = "driver"
	RoleRestaurant = "restaurant"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

type User struct {
	ID           string    `db:"id"`
	Login        string    `db:"login"`
	Password     string    `db:"password"`
	Email        string    `db:"email"`
	Language     string    `db:"language"`
	Role         string    `db:"role"`
	DriverID     *string   `db:"driver_id"`
	RestaurantID *string   `db:"restaurant_id"`
	CreatedAt    time.Time `db:"created_at"`
}

func IsOperator(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}
