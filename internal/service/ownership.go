package service

import (
	"context"
	"database/sql"

	"github.com/nao1215/devconnector/internal/db"
	"github.com/nao1215/devconnector/internal/model"
)

// mutate はリソースを読み込み、変更し、書き戻すまでを1トランザクションで行う。
// loadとsaveには必ずトランザクションに紐づいたQueriesが渡される。
func mutate[T any](
	ctx context.Context,
	conn *sql.DB,
	load func(q *db.Queries) (T, error),
	change func(res T) error,
	save func(q *db.Queries, res T) error,
) (T, error) {
	var res T
	err := db.RunInTx(ctx, conn, func(q *db.Queries) error {
		loaded, err := load(q)
		if err != nil {
			return err
		}
		if err := change(loaded); err != nil {
			return err
		}
		if err := save(q, loaded); err != nil {
			return err
		}
		res = loaded
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res, nil
}

// mutateOwned はmutateに所有者確認を加えたもの。
// 呼び出し元がリソースの所有者でなければKindForbiddenを返し、何も変更しない。
func mutateOwned[T model.Owned](
	ctx context.Context,
	conn *sql.DB,
	callerID string,
	load func(q *db.Queries) (T, error),
	change func(res T) error,
	save func(q *db.Queries, res T) error,
) (T, error) {
	return mutate(ctx, conn, load, func(res T) error {
		if err := model.Authorize(res, callerID); err != nil {
			return err
		}
		return change(res)
	}, save)
}
