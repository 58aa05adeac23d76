package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationFromSQL(t *testing.T) {
	cases := map[string]string{
		"SELECT * FROM customers":                            "SELECT",
		"  insert into subscriptions (id) values (?)":        "INSERT",
		"WITH x AS (SELECT 1) UPDATE products SET active = ?": "SELECT",
		"(DELETE FROM prices)":                               "DELETE",
		"":                                                   "UNKNOWN",
		"VACUUM":                                             "UNKNOWN",
	}
	for sql, want := range cases {
		assert.Equal(t, want, operationFromSQL(sql), sql)
	}
}
