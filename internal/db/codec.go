package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// encodeList はスライスをJSON配列として保存用に変換する。nilは空配列として扱う。
func encodeList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("JSONへの変換に失敗: %w", err)
	}
	return string(b), nil
}

// decodeList はJSON配列を読み込む。結果は常にnil以外のスライスになる。
func decodeList[T any](s string) ([]T, error) {
	items := []T{}
	if s == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, fmt.Errorf("JSONの解析に失敗: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func encodeMap(m map[string]string) (string, error) {
	if m == nil {
		m = map[string]string{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("JSONへの変換に失敗: %w", err)
	}
	return string(b), nil
}

func decodeMap(s string) (map[string]string, error) {
	m := map[string]string{}
	if s == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("JSONの解析に失敗: %w", err)
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

// expectAffected は更新・削除が1行以上に作用したことを確認する。
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("影響行数の取得に失敗: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
