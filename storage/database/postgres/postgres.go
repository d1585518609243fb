package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/taleemhub/backoffice/core"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type repository struct {
	db core.DB
}

func (repo repository) getExec(exec []core.DBExecutor) core.DBExecutor {
	if len(exec) > 0 && exec[0] != nil {
		return exec[0]
	}
	return repo.db
}

func selectAll(ctx context.Context, exec core.DBExecutor, q sq.SelectBuilder, dest interface{}) error {
	query, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "executing query")
	}
	defer func() { _ = rows.Close() }()
	if err = sqlx.StructScan(rows, dest); err != nil {
		return errors.Wrap(err, "scanning rows")
	}
	return errors.Wrap(rows.Err(), "reading rows")
}

func execQuery(ctx context.Context, exec core.DBExecutor, q sq.Sqlizer) (int, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "executing query")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "reading affected rows")
}

func orderBy(q sq.SelectBuilder, ordering []core.DBOrdering) sq.SelectBuilder {
	for _, ord := range ordering {
		q = q.OrderBy(ord.String())
	}
	return q
}
