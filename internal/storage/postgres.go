//go:generate mockgen -source=postgres.go -destination=mocks/storage.go -package=mocks
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/VladKvetkin/gofood/internal/entities"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrConflict = errors.New("conflict")
	ErrNoRows   = errors.New("no rows")
)

const orderColumns = `id, order_number, status, customer_id, driver_id, restaurant_id, pickup_code,
	pickup_confirmed_at, delivered_at, total_amount, version, created_at, updated_at`

type Storage interface {
	GetUser(context.Context, string) (entities.User, error)
	GetUserByLogin(context.Context, string) (entities.User, error)
	CreateUser(context.Context, entities.User) (string, error)

	GetOrder(context.Context, string) (entities.Order, error)
	GetOrders(context.Context, entities.OrderFilter) ([]entities.Order, error)
	CreateOrder(context.Context, entities.Order) (entities.Order, error)
	UpdateOrderStatus(context.Context, entities.OrderTransition) (entities.Order, error)

	CreateNotification(context.Context, entities.Notification) (string, error)
	GetUserNotifications(context.Context, string, int) ([]entities.Notification, error)

	EnqueueEmail(context.Context, entities.Email) (string, error)
	GetPendingEmails(context.Context, int, int) ([]entities.Email, error)
	MarkEmailSent(context.Context, string, time.Time) error
	MarkEmailFailed(context.Context, string, int, string, bool) error

	RunMigrations(context.Context) error
}

type PostgresStorage struct {
	db *sqlx.DB
}

func NewPostgresStorage(db *sqlx.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func (s *PostgresStorage) GetUser(ctx context.Context, userID string) (entities.User, error) {
	var user entities.User

	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1;", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user, ErrNoRows
		}

		return user, err
	}

	return user, nil
}

func (s *PostgresStorage) GetUserByLogin(ctx context.Context, login string) (entities.User, error) {
	var user entities.User

	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE login = $1;", login)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user, ErrNoRows
		}

		return user, err
	}

	return user, nil
}

func (s *PostgresStorage) CreateUser(ctx context.Context, user entities.User) (string, error) {
	var userID string

	row := s.db.QueryRowxContext(
		ctx,
		`INSERT INTO users (login, password, email, language, role, driver_id, restaurant_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id;`,
		user.Login, user.Password, user.Email, user.Language, user.Role, user.DriverID, user.RestaurantID,
	)

	if err := row.Scan(&userID); err != nil {
		if isIntegrityViolation(err) {
			return "", ErrConflict
		}

		return "", err
	}

	return userID, nil
}

// GetOrder treats an id that is not a UUID as an unknown order.
func (s *PostgresStorage) GetOrder(ctx context.Context, orderID string) (entities.Order, error) {
	var order entities.Order

	if _, err := uuid.Parse(orderID); err != nil {
		return order, ErrNoRows
	}

	err := s.db.GetContext(ctx, &order, "SELECT "+orderColumns+" FROM orders WHERE id = $1;", orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return order, ErrNoRows
		}

		return order, err
	}

	return order, nil
}

func (s *PostgresStorage) GetOrders(ctx context.Context, filter entities.OrderFilter) ([]entities.Order, error) {
	var (
		conditions []string
		args       []any
	)

	addCondition := func(column string, value string) {
		if value == "" {
			return
		}

		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	addCondition("customer_id", filter.CustomerID)
	addCondition("driver_id", filter.DriverID)
	addCondition("restaurant_id", filter.RestaurantID)
	addCondition("status", filter.Status)

	query := "SELECT " + orderColumns + " FROM orders"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var orders []entities.Order

	if err := s.db.SelectContext(ctx, &orders, query+";", args...); err != nil {
		return nil, err
	}

	return orders, nil
}

func (s *PostgresStorage) CreateOrder(ctx context.Context, order entities.Order) (entities.Order, error) {
	var created entities.Order

	err := s.db.GetContext(
		ctx,
		&created,
		`INSERT INTO orders (order_number, status, customer_id, restaurant_id, pickup_code, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+orderColumns+`;`,
		order.Number, order.Status, order.CustomerID, order.RestaurantID, order.PickupCode, order.TotalAmount,
	)
	if err != nil {
		if isIntegrityViolation(err) {
			return created, ErrConflict
		}

		return created, err
	}

	return created, nil
}

// UpdateOrderStatus applies the transition only if the row still carries the
// expected version. A stale version yields ErrConflict and leaves the row as is.
func (s *PostgresStorage) UpdateOrderStatus(ctx context.Context, transition entities.OrderTransition) (entities.Order, error) {
	var updated entities.Order

	err := s.db.GetContext(
		ctx,
		&updated,
		`UPDATE orders SET
			status = $1,
			driver_id = COALESCE($2, driver_id),
			pickup_confirmed_at = COALESCE($3, pickup_confirmed_at),
			delivered_at = COALESCE($4, delivered_at),
			updated_at = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING `+orderColumns+`;`,
		transition.Status,
		transition.DriverID,
		transition.PickupConfirmedAt,
		transition.DeliveredAt,
		transition.UpdatedAt,
		transition.OrderID,
		transition.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return updated, ErrConflict
		}

		return updated, err
	}

	return updated, nil
}

func (s *PostgresStorage) CreateNotification(ctx context.Context, notification entities.Notification) (string, error) {
	var notificationID string

	data := "{}"
	if len(notification.Data) > 0 {
		data = string(notification.Data)
	}

	row := s.db.QueryRowxContext(
		ctx,
		`INSERT INTO notifications (user_id, type, title, message, data)
		VALUES ($1, $2, $3, $4, $5) RETURNING id;`,
		notification.UserID, notification.Type, notification.Title, notification.Message, data,
	)

	if err := row.Scan(&notificationID); err != nil {
		if isIntegrityViolation(err) {
			return "", ErrConflict
		}

		return "", err
	}

	return notificationID, nil
}

func (s *PostgresStorage) GetUserNotifications(ctx context.Context, userID string, limit int) ([]entities.Notification, error) {
	var notifications []entities.Notification

	err := s.db.SelectContext(
		ctx,
		&notifications,
		"SELECT id, user_id, type, title, message, data, created_at FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2;",
		userID, limit,
	)
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

func (s *PostgresStorage) EnqueueEmail(ctx context.Context, email entities.Email) (string, error) {
	var emailID string

	row := s.db.QueryRowxContext(
		ctx,
		`INSERT INTO email_outbox (recipient, subject, html_body, text_body, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id;`,
		email.Recipient, email.Subject, email.HTMLBody, email.TextBody, entities.EmailStatusPending,
	)

	if err := row.Scan(&emailID); err != nil {
		return "", err
	}

	return emailID, nil
}

func (s *PostgresStorage) GetPendingEmails(ctx context.Context, limit int, maxAttempts int) ([]entities.Email, error) {
	var emails []entities.Email

	err := s.db.SelectContext(
		ctx,
		&emails,
		"SELECT * FROM email_outbox WHERE status = $1 AND attempts < $2 ORDER BY created_at ASC LIMIT $3;",
		entities.EmailStatusPending, maxAttempts, limit,
	)
	if err != nil {
		return nil, err
	}

	return emails, nil
}

func (s *PostgresStorage) MarkEmailSent(ctx context.Context, emailID string, sentAt time.Time) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE email_outbox SET status = $1, sent_at = $2 WHERE id = $3;`,
		entities.EmailStatusSent, sentAt, emailID,
	)

	return err
}

// MarkEmailFailed records a failed delivery attempt. With giveUp set the row
// leaves the pending queue for good.
func (s *PostgresStorage) MarkEmailFailed(ctx context.Context, emailID string, attempts int, lastError string, giveUp bool) error {
	status := entities.EmailStatusPending
	if giveUp {
		status = entities.EmailStatusFailed
	}

	_, err := s.db.ExecContext(
		ctx,
		`UPDATE email_outbox SET status = $1, attempts = $2, last_error = $3 WHERE id = $4;`,
		status, attempts, lastError, emailID,
	)

	return err
}

func (s *PostgresStorage) RunMigrations(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	for _, migration := range migrations {
		if _, err := tx.ExecContext(ctx, migration); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func isIntegrityViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pgerrcode.IsIntegrityConstraintViolation(string(pqErr.Code))
}

var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS users(
		id uuid DEFAULT gen_random_uuid() PRIMARY KEY,
		login TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		language VARCHAR(8) NOT NULL DEFAULT 'en',
		role VARCHAR NOT NULL,
		driver_id VARCHAR UNIQUE,
		restaurant_id VARCHAR,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS orders(
		id uuid DEFAULT gen_random_uuid() PRIMARY KEY,
		order_number VARCHAR NOT NULL UNIQUE,
		status VARCHAR NOT NULL,
		customer_id uuid,
		driver_id VARCHAR,
		restaurant_id VARCHAR NOT NULL,
		pickup_code VARCHAR NOT NULL,
		pickup_confirmed_at TIMESTAMPTZ,
		delivered_at TIMESTAMPTZ,
		total_amount BIGINT NOT NULL DEFAULT 0,
		version INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_customer FOREIGN KEY(customer_id) REFERENCES users(id) ON DELETE SET NULL
	);
	`,
	`CREATE INDEX IF NOT EXISTS orders_driver_id_idx ON orders(driver_id);`,
	`CREATE INDEX IF NOT EXISTS orders_customer_id_idx ON orders(customer_id);`,
	`
	CREATE TABLE IF NOT EXISTS notifications(
		id uuid DEFAULT gen_random_uuid() PRIMARY KEY,
		user_id uuid NOT NULL,
		type VARCHAR NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		data JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_user FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS email_outbox(
		id uuid DEFAULT gen_random_uuid() PRIMARY KEY,
		recipient TEXT NOT NULL,
		subject TEXT NOT NULL,
		html_body TEXT NOT NULL,
		text_body TEXT NOT NULL,
		status VARCHAR NOT NULL,
		attempts INT NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		sent_at TIMESTAMPTZ
	);
	`,
}
