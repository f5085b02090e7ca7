// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// 認証トークンの署名・検証（TokenCodec）と認可ゲート（Auth）、
// パニックリカバリ、CORS設定、Prometheusメトリクスの収集を含む。
package middleware
