package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"taskwell/internal/core/id"
	"taskwell/internal/domain/task"
)

// compressionAlgo marks how an action payload is stored.
type compressionAlgo string

const (
	compressionNone compressionAlgo = "none"
	compressionZstd compressionAlgo = "zstd"
)

// actionPayload is the compressed representation of old/new values.
type actionPayload struct {
	Old string `json:"old,omitempty"`
	New string `json:"new,omitempty"`
}

// TaskActionRepo implements task.ActionRepository as an append-only
// log. Large old/new payloads are zstd-compressed; the row keeps the
// algorithm marker so readers stay compatible with both encodings.
type TaskActionRepo struct {
	txManager *TxManager
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder

	// compressThreshold is the combined payload size in bytes above
	// which compression kicks in.
	compressThreshold int
}

var _ task.ActionRepository = (*TaskActionRepo)(nil)

// NewTaskActionRepo creates a task-action repository.
func NewTaskActionRepo(txManager *TxManager) (*TaskActionRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &TaskActionRepo{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 4 * 1024,
	}, nil
}

// Append inserts the action record. Never updates existing rows.
func (r *TaskActionRepo) Append(ctx context.Context, action *task.TaskAction) error {
	oldValue := action.OldValue
	newValue := action.NewValue
	var compressed []byte
	algo := compressionNone

	if len(oldValue)+len(newValue) > r.compressThreshold {
		raw, err := json.Marshal(actionPayload{Old: oldValue, New: newValue})
		if err != nil {
			return fmt.Errorf("marshal action payload: %w", err)
		}
		compressed = r.encoder.EncodeAll(raw, nil)
		oldValue = ""
		newValue = ""
		algo = compressionZstd
	}

	sql := `
		INSERT INTO task_actions (
			id, task_id, actor_employee_id, type,
			old_value, new_value, comment,
			payload_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql,
		action.ID, action.TaskID, action.ActorEmployeeID, action.Type,
		oldValue, newValue, action.Comment,
		compressed, algo, action.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append task action: %w", err)
	}
	return nil
}

// ListByTask returns the task's actions, oldest first.
func (r *TaskActionRepo) ListByTask(ctx context.Context, taskID id.ID) ([]task.TaskAction, error) {
	sql := `
		SELECT id, task_id, actor_employee_id, type,
		       old_value, new_value, comment,
		       payload_compressed, compression_algo, created_at
		FROM task_actions
		WHERE task_id = $1
		ORDER BY created_at
	`
	rows, err := r.txManager.GetQuerier(ctx).Query(ctx, sql, taskID)
	if err != nil {
		return nil, fmt.Errorf("query task actions: %w", err)
	}
	defer rows.Close()

	var actions []task.TaskAction
	for rows.Next() {
		var a task.TaskAction
		var compressed []byte
		var algo compressionAlgo
		err := rows.Scan(
			&a.ID, &a.TaskID, &a.ActorEmployeeID, &a.Type,
			&a.OldValue, &a.NewValue, &a.Comment,
			&compressed, &algo, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task action: %w", err)
		}

		if algo == compressionZstd && len(compressed) > 0 {
			raw, err := r.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress action payload: %w", err)
			}
			var payload actionPayload
			if err := json.Unmarshal(raw, &payload); err != nil {
				return nil, fmt.Errorf("unmarshal action payload: %w", err)
			}
			a.OldValue = payload.Old
			a.NewValue = payload.New
		}

		actions = append(actions, a)
	}
	return actions, rows.Err()
}
