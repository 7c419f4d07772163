package controllers

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	if !isDuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}) {
		t.Fatal("MySQL 1062 should map to a conflict")
	}
	if !isDuplicateKey(gorm.ErrDuplicatedKey) {
		t.Fatal("gorm's duplicated-key sentinel should map to a conflict")
	}
	if isDuplicateKey(&mysql.MySQLError{Number: 1054, Message: "Unknown column"}) {
		t.Fatal("other MySQL errors are not conflicts")
	}
	if isDuplicateKey(errors.New("connection refused")) {
		t.Fatal("generic errors are not conflicts")
	}
}
