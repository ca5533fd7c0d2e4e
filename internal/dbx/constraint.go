package dbx

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the SQLSTATE Postgres reports for unique/PK conflicts.
const uniqueViolation = "23505"

// constraintFields maps constraint names from the migrations to the logical
// field they guard.
var constraintFields = map[string]string{
	"profiles_pkey":                      "id",
	"profiles_username_key":              "username",
	"identities_email_key":               "email",
	"votes_user_id_item_id_key":          "user_id,item_id",
	"saved_codes_user_id_code_id_key":    "user_id,code_id",
	"folder_codes_folder_id_code_id_key": "folder_id,code_id",
	"waitlist_email_key":                 "email",
}

// ClassifyError converts a unique violation reported by pgx into a
// *common.ConstraintViolationError. Any other error is returned unchanged.
func ClassifyError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	return &common.ConstraintViolationError{
		Field:      fieldForConstraint(pgErr.ConstraintName),
		Constraint: pgErr.ConstraintName,
		Err:        err,
	}
}

// fieldForConstraint falls back to "id" for primary keys and to the raw
// constraint name otherwise.
func fieldForConstraint(name string) string {
	if f, ok := constraintFields[name]; ok {
		return f
	}
	if strings.HasSuffix(name, "_pkey") {
		return "id"
	}
	return name
}
