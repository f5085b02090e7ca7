// Package httpclient は外部APIへのHTTP通信を行うクライアントを提供する。
//
// GitHub APIなど外部サービスの呼び出しで、タイムアウト・ヘッダー設定・
// ステータスコードの判定を統一する。
package httpclient
