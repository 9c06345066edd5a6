// Package storage is the Postgres credential store used by the auth service.
// It talks to the database through database/sql (pgx's stdlib bridge in
// production) and turns unique violations on users_email_key and
// users_username_key into *auth.DuplicateIdentityError.
package storage
