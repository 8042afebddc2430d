package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/civic?sslmode=disable", "pgx5://u:p@localhost:5432/civic?sslmode=disable"},
		{"postgresql://u@db/civic", "pgx5://u@db/civic"},
		{"pgx5://u@db/civic", "pgx5://u@db/civic"},
		{"host=db user=u", "host=db user=u"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MigrationURL(tt.in))
	}
}
