// Package transcript ships chat messages to Elasticsearch for audit.
package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"instantcredit-agents/internal/common/database"
	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/models"
)

// Document is the indexed shape of one chat turn.
type Document struct {
	ConversationID string           `json:"conversationId"`
	CustomerID     string           `json:"customerId"`
	Stage          models.Stage     `json:"stage"`
	MessageID      string           `json:"messageId"`
	Role           string           `json:"role"`
	Content        string           `json:"content"`
	AgentType      models.AgentType `json:"agentType,omitempty"`
	Timestamp      time.Time        `json:"timestamp"`
}

// Indexer writes transcript documents. A nil Indexer is a no-op, so
// callers do not need to branch on whether auditing is enabled.
type Indexer struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewIndexer(es *database.ElasticsearchClient, index string, log logger.Logger) *Indexer {
	return &Indexer{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "transcript-indexer"}),
	}
}

// IndexMessage stores one turn. Failures are logged and swallowed: the
// audit trail must never break the conversation.
func (i *Indexer) IndexMessage(ctx context.Context, conversationID string, state models.ConversationState, msg models.ChatMessage) {
	if i == nil {
		return
	}

	doc := Document{
		ConversationID: conversationID,
		CustomerID:     state.CustomerID,
		Stage:          state.Stage,
		MessageID:      msg.ID,
		Role:           msg.Role,
		Content:        msg.Content,
		AgentType:      msg.AgentType,
		Timestamp:      msg.Timestamp,
	}

	if err := i.indexDoc(ctx, doc); err != nil {
		i.logger.Warn("transcript indexing failed", map[string]interface{}{
			"conversationId": conversationID,
			"messageId":      msg.ID,
			"error":          err.Error(),
		})
	}
}

func (i *Indexer) indexDoc(ctx context.Context, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding transcript document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: doc.MessageID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.es.Client)
	if err != nil {
		return fmt.Errorf("indexing transcript document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch returned %s", res.Status())
	}
	return nil
}
