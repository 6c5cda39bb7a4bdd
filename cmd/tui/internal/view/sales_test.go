package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprasetya/kasir/internal/sales"
)

func TestSalesModel_StaleSearchResponseDropped(t *testing.T) {
	m := NewSalesModel(nil)
	m.filter = sales.ListFilter{Search: "budi"}
	m.loading = true

	// The unfiltered load from before the search resolves late; its
	// result must not replace the pending search.
	stale := []*sales.Transaction{{ID: 1, Number: "TRX-0001"}, {ID: 2, Number: "TRX-0002"}}
	updated, _ := m.Update(loadSalesMsg{filter: sales.ListFilter{}, txs: stale})
	m = updated.(SalesModel)

	assert.Empty(t, m.txs)
	assert.True(t, m.loading, "still waiting on the matching response")

	fresh := []*sales.Transaction{{ID: 3, Number: "TRX-0003", CustomerName: "Budi"}}
	updated, _ = m.Update(loadSalesMsg{filter: m.filter, txs: fresh})
	m = updated.(SalesModel)

	require.Len(t, m.txs, 1)
	assert.Equal(t, "TRX-0003", m.txs[0].Number)
	assert.False(t, m.loading)
}
