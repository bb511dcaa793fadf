// Package admin manages operator accounts for the observer API and
// their audit trail.
package admin

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/models"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// GetOperatorAccount retrieves an operator account by name
func GetOperatorAccount(db *sqlx.DB, name string) (*models.OperatorAccount, error) {
	var acc models.OperatorAccount
	err := db.Get(&acc, `SELECT name, token_hash, created_at, updated_at FROM operator_accounts WHERE name=$1`, name)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// VerifyOperatorToken checks if the provided token matches the stored hash
func VerifyOperatorToken(hashedToken, plainToken string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(plainToken))
	return err == nil
}

// CreateOperatorAccount creates or updates an operator account (used for seeding)
func CreateOperatorAccount(db *sqlx.DB, name, plainToken string) error {
	hashedToken, err := bcrypt.GenerateFromPassword([]byte(plainToken), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash token: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO operator_accounts (name, token_hash, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET
			token_hash = EXCLUDED.token_hash,
			updated_at = NOW()
	`, name, string(hashedToken))

	return err
}

// LogOperatorAction records an operator action in the audit log
func LogOperatorAction(db *sqlx.DB, operatorName, ip, route, action string, success bool) error {
	if db == nil {
		return nil
	}
	_, err := db.Exec(`
		INSERT INTO operator_audit (operator_name, ip, route, action, success, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, operatorName, ip, route, action, success)
	if err != nil {
		log.Printf("[ADMIN] Failed to log operator action: %v", err)
	}
	return err
}

// GetOperatorAuditLogs retrieves recent operator audit rows with pagination
func GetOperatorAuditLogs(db *sqlx.DB, limit, offset int) ([]models.OperatorAudit, error) {
	var logs []models.OperatorAudit
	query := `
		SELECT id, operator_name, ip, route, action, success, created_at
		FROM operator_audit
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	err := db.Select(&logs, query, limit, offset)
	return logs, err
}

// ValidateOperator validates a name + token combination
func ValidateOperator(db *sqlx.DB, name, token string) (*models.OperatorAccount, error) {
	acc, err := GetOperatorAccount(db, name)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Printf("[ADMIN] No operator account found for: %s", name)
			return nil, fmt.Errorf("operator account not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !VerifyOperatorToken(acc.TokenHash, token) {
		log.Printf("[ADMIN] Token verification failed for: %s", name)
		return nil, fmt.Errorf("invalid token")
	}

	return acc, nil
}
