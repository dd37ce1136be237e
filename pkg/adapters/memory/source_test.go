package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier/pkg/adapters/memory"
	"github.com/espalier-dev/espalier/pkg/domain"
)

func TestSource_SnapshotAndReplace(t *testing.T) {
	ctx := context.Background()
	source := memory.NewSource(domain.Flow{Name: "v1"})

	watch, err := source.Watch(ctx)
	require.NoError(t, err)

	flow, err := source.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1", flow.Name)

	source.Replace(domain.Flow{Name: "v2"})

	select {
	case <-watch:
	default:
		t.Fatal("expected a watch notification after Replace")
	}

	flow, err = source.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2", flow.Name)
}
