package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type Repo interface {
	// Store stores a new Item to the database
	Store(ctx context.Context, userId int, item Item) (int, error)
	FindById(ctx context.Context, userId int, itemId int) (Item, error)
	// FindQueued returns queued items ordered by (obtained ASC, sort key ASC),
	// so every obtained item follows every pending one.
	FindQueued(ctx context.Context, userId int) ([]Item, error)
	FindBacklog(ctx context.Context, userId int) ([]Item, error)
	Update(ctx context.Context, userId int, item Item) (bool, error)
	Delete(ctx context.Context, userId int, itemId int) (bool, error)
	SetObtained(ctx context.Context, userId int, itemId int, obtained bool) (bool, error)
	SetOrder(ctx context.Context, userId int, itemId int, order *int) (bool, error)
	// SwapOrder atomically exchanges the sort keys of two queued items.
	// Both rows are re-read inside the transaction; it returns false without
	// touching anything when either item is gone or no longer queued.
	SwapOrder(ctx context.Context, userId int, firstId int, secondId int) (bool, error)
	FindMaxOrder(ctx context.Context, userId int) (int, error)
	// FindPreviousQueued returns the non-obtained queued item with the greatest
	// sort key strictly less than the given one.
	FindPreviousQueued(ctx context.Context, userId int, order int) (Item, bool, error)
	// FindNextQueued returns the non-obtained queued item with the least
	// sort key strictly greater than the given one.
	FindNextQueued(ctx context.Context, userId int, order int) (Item, bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewItemRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

const itemColumns = "id, title, price, icon, url, description, obtained, sort_order"

func (r *RepoImpl) Store(ctx context.Context, userId int, item Item) (int, error) {
	query := `INSERT INTO item (
                    user_id,
                    title,
                    price,
                    icon,
                    url,
                    description,
                    obtained,
                    sort_order
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %v", err)
		log.Error(err)
		return 0, err
	}
	defer stmt.Close()

	icon := item.Icon
	if icon == "" {
		icon = DefaultIcon
	}

	result, err := stmt.ExecContext(ctx,
		userId,
		item.Title,
		item.Price,
		icon,
		nullableString(item.Url),
		nullableString(item.Description),
		item.Obtained,
		nullableOrder(item.Order),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return 0, err
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return 0, err
	}

	return int(lastInsertID), nil
}

func (r *RepoImpl) FindById(ctx context.Context, userId int, itemId int) (Item, error) {
	query := fmt.Sprintf("SELECT %s FROM item WHERE id = ? AND user_id = ?", itemColumns)
	row := r.db.QueryRowContext(ctx, query, itemId, userId)

	item, err := scanItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrItemNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not scan item: %w", err)
		log.Error(err)
		return Item{}, err
	}
	return item, nil
}

func (r *RepoImpl) FindQueued(ctx context.Context, userId int) ([]Item, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM item WHERE user_id = ? AND sort_order IS NOT NULL ORDER BY obtained, sort_order",
		itemColumns,
	)
	return r.findAll(ctx, query, userId)
}

func (r *RepoImpl) FindBacklog(ctx context.Context, userId int) ([]Item, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM item WHERE user_id = ? AND sort_order IS NULL ORDER BY id",
		itemColumns,
	)
	return r.findAll(ctx, query, userId)
}

func (r *RepoImpl) findAll(ctx context.Context, query string, userId int) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query items: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			err := fmt.Errorf("could not scan item: %w", err)
			log.Error(err)
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	return items, nil
}

func (r *RepoImpl) Update(ctx context.Context, userId int, item Item) (bool, error) {
	query := `UPDATE item SET
                  title = ?,
                  price = ?,
                  icon = ?,
                  url = ?,
                  description = ?
              WHERE id = ? AND user_id = ?`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %v", err)
		log.Error(err)
		return false, err
	}
	defer stmt.Close()

	icon := item.Icon
	if icon == "" {
		icon = DefaultIcon
	}

	result, err := stmt.ExecContext(ctx,
		item.Title,
		item.Price,
		icon,
		nullableString(item.Url),
		nullableString(item.Description),
		item.ID,
		userId,
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}

	return rowsAffected == 1, nil
}

func (r *RepoImpl) Delete(ctx context.Context, userId int, itemId int) (bool, error) {
	query := "DELETE FROM item WHERE id = ? AND user_id = ?"
	result, err := r.db.ExecContext(ctx, query, itemId, userId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *RepoImpl) SetObtained(ctx context.Context, userId int, itemId int, obtained bool) (bool, error) {
	query := "UPDATE item SET obtained = ? WHERE id = ? AND user_id = ?"
	result, err := r.db.ExecContext(ctx, query, obtained, itemId, userId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *RepoImpl) SetOrder(ctx context.Context, userId int, itemId int, order *int) (bool, error) {
	query := "UPDATE item SET sort_order = ? WHERE id = ? AND user_id = ?"
	result, err := r.db.ExecContext(ctx, query, nullableOrder(order), itemId, userId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *RepoImpl) SwapOrder(ctx context.Context, userId int, firstId int, secondId int) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return false, err
	}
	defer tx.Rollback()

	readOrder := func(itemId int) (sql.NullInt64, error) {
		var order sql.NullInt64
		row := tx.QueryRowContext(ctx, "SELECT sort_order FROM item WHERE id = ? AND user_id = ?", itemId, userId)
		err := row.Scan(&order)
		return order, err
	}

	firstOrder, err := readOrder(firstId)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		err := fmt.Errorf("could not read sort order of item %d: %w", firstId, err)
		log.Error(err)
		return false, err
	}
	secondOrder, err := readOrder(secondId)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		err := fmt.Errorf("could not read sort order of item %d: %w", secondId, err)
		log.Error(err)
		return false, err
	}

	// One of the items left the queue since the caller looked at it.
	if !firstOrder.Valid || !secondOrder.Valid {
		return false, nil
	}

	writeOrder := func(itemId int, order int64) error {
		_, err := tx.ExecContext(ctx, "UPDATE item SET sort_order = ? WHERE id = ? AND user_id = ?", order, itemId, userId)
		return err
	}

	if err := writeOrder(firstId, secondOrder.Int64); err != nil {
		err := fmt.Errorf("could not update sort order of item %d: %w", firstId, err)
		log.Error(err)
		return false, err
	}
	if err := writeOrder(secondId, firstOrder.Int64); err != nil {
		err := fmt.Errorf("could not update sort order of item %d: %w", secondId, err)
		log.Error(err)
		return false, err
	}

	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit order swap: %w", err)
		log.Error(err)
		return false, err
	}
	return true, nil
}

func (r *RepoImpl) FindMaxOrder(ctx context.Context, userId int) (int, error) {
	query := "SELECT MAX(sort_order) FROM item WHERE user_id = ?"
	row := r.db.QueryRowContext(ctx, query, userId)
	var maxOrder sql.NullInt64
	if err := row.Scan(&maxOrder); err != nil {
		err := fmt.Errorf("could not find max sort order: %w", err)
		log.Error(err)
		return 0, err
	}

	if !maxOrder.Valid {
		log.Debugf("no queued items for user %d, returning 0", userId)
		return 0, nil
	}

	return int(maxOrder.Int64), nil
}

func (r *RepoImpl) FindPreviousQueued(ctx context.Context, userId int, order int) (Item, bool, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM item
				WHERE user_id = ? AND obtained = 0 AND sort_order < ?
				ORDER BY sort_order DESC LIMIT 1`,
		itemColumns,
	)
	return r.findNeighbour(ctx, query, userId, order)
}

func (r *RepoImpl) FindNextQueued(ctx context.Context, userId int, order int) (Item, bool, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM item
				WHERE user_id = ? AND obtained = 0 AND sort_order > ?
				ORDER BY sort_order ASC LIMIT 1`,
		itemColumns,
	)
	return r.findNeighbour(ctx, query, userId, order)
}

func (r *RepoImpl) findNeighbour(ctx context.Context, query string, userId int, order int) (Item, bool, error) {
	row := r.db.QueryRowContext(ctx, query, userId, order)
	item, err := scanItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, false, nil
	}
	if err != nil {
		err := fmt.Errorf("could not scan item: %w", err)
		log.Error(err)
		return Item{}, false, err
	}
	return item, true, nil
}

func scanItem(scan func(dest ...any) error) (Item, error) {
	var item Item
	var url, description sql.NullString
	var order sql.NullInt64
	if err := scan(
		&item.ID,
		&item.Title,
		&item.Price,
		&item.Icon,
		&url,
		&description,
		&item.Obtained,
		&order,
	); err != nil {
		return Item{}, err
	}
	item.Url = url.String
	item.Description = description.String
	if order.Valid {
		value := int(order.Int64)
		item.Order = &value
	}
	return item, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableOrder(order *int) interface{} {
	if order == nil {
		return nil
	}
	return *order
}
