package application

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"atlas-core-wave-layer/internal/config"
	"atlas-core-wave-layer/internal/domain"
)

// fakeExecutor implements ports.GraphQLExecutor for testing. Each queued
// response is either an error or a value encoded into the call's out target.
type fakeExecutor struct {
	t     *testing.T
	calls []fakeCall
	queue []any
}

type fakeCall struct {
	query     string
	variables map[string]any
}

func newFakeExecutor(t *testing.T, responses ...any) *fakeExecutor {
	return &fakeExecutor{t: t, queue: responses}
}

func (f *fakeExecutor) Execute(ctx context.Context, query string, variables map[string]any, out any) error {
	f.calls = append(f.calls, fakeCall{query: query, variables: variables})
	require.NotEmpty(f.t, f.queue, "unexpected extra GraphQL call")
	next := f.queue[0]
	f.queue = f.queue[1:]
	if err, ok := next.(error); ok {
		return err
	}
	raw, err := json.Marshal(next)
	require.NoError(f.t, err)
	require.NoError(f.t, json.Unmarshal(raw, out))
	return nil
}

func testConfig(t *testing.T) *config.Config {
	env := map[string]string{
		"INTERNAL_SECRET": "s3cret",
		"WAVE_TOKEN":      "token-abc",
	}
	for _, key := range domain.BusinessKeys() {
		suffix := key.EnvSuffix()
		env["WAVE_BUSINESS_ID_"+suffix] = "biz-" + string(key)
		env["WAVE_ANCHOR_ACCOUNT_ID_"+suffix] = "anchor-" + string(key)
		env["WAVE_INCOME_ACCOUNT_ID_"+suffix] = "income-" + string(key)
		env["WAVE_PRODUCT_ID_"+suffix] = "product-" + string(key)
		env["WAVE_LINE_ITEM_ACCOUNT_ID_"+suffix] = "line-" + string(key)
	}
	cfg, err := config.LoadFrom(func(name string) string { return env[name] })
	require.NoError(t, err)
	return cfg
}

// invoicesPage builds a business.invoices data payload holding the given nodes.
func invoicesPage(totalPages int, nodes ...map[string]any) map[string]any {
	edges := make([]map[string]any, 0, len(nodes))
	for _, node := range nodes {
		edges = append(edges, map[string]any{"node": node})
	}
	return map[string]any{
		"business": map[string]any{
			"id": "biz-bakery",
			"invoices": map[string]any{
				"pageInfo": map[string]any{"currentPage": 1, "totalPages": totalPages, "totalCount": len(nodes)},
				"edges":    edges,
			},
		},
	}
}

func invoiceNode(id, number, status, total, amountDue string) map[string]any {
	return map[string]any{
		"id":            id,
		"invoiceNumber": number,
		"status":        status,
		"total":         map[string]any{"value": total},
		"amountDue":     map[string]any{"value": amountDue},
	}
}
