package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/smallbiznis/launchpad/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAutoMigratesNonPostgres(t *testing.T) {
	conn := db.NewTest(t)

	require.NoError(t, Run(conn))
	require.NoError(t, Run(conn))

	for _, table := range []string{
		"organizations", "organization_members", "profiles", "customers",
		"products", "prices", "subscriptions", "webhook_events",
	} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestRunRequiresConnection(t *testing.T) {
	assert.Error(t, Run(nil))
}
