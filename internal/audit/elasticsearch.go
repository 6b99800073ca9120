// internal/audit/elasticsearch.go
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"premium-workers/internal/common/errors"
	"premium-workers/internal/premium"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// IndexMapping is applied when the audit index is created.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "id":            {"type": "keyword"},
      "band":          {"type": "keyword"},
      "policyVersion": {"type": "keyword"},
      "premium":       {"type": "double"},
      "createdAt":     {"type": "date"},
      "applicant":     {"type": "object"},
      "features":      {"type": "object"},
      "modelInput":    {"type": "object"}
    }
  }
}`

// ElasticsearchSink indexes predictions for search and dashboards.
type ElasticsearchSink struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchSink(client *elasticsearch.Client, index string) *ElasticsearchSink {
	return &ElasticsearchSink{client: client, index: index}
}

func (s *ElasticsearchSink) Name() string { return "elasticsearch" }

func (s *ElasticsearchSink) Record(ctx context.Context, rec premium.AuditRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: rec.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewIndexFailedError(s.index, fmt.Errorf("status %s", res.Status()))
	}
	return nil
}
