// Package security はアプリケーションのセキュリティ機能を提供する。
//
// InputSanitizerService はユーザー入力の自由テキスト（会議タイトル・説明）から
// HTML/スクリプトを全て除去し、XSS攻撃などのセキュリティリスクからユーザーを保護する。
// bluemondayライブラリのStrictPolicy（全タグ除去）を使用する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// InputSanitizerService は自由テキスト入力のサニタイズ機能のインターフェースを定義する。
// バリデーション前に必ず適用され、文字数チェックはサニタイズ後の値に対して行われる。
type InputSanitizerService interface {
	// Sanitize は入力からHTMLタグとスクリプトを全て除去し、
	// 前後の空白をトリムしたプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// inputSanitizer はInputSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type inputSanitizer struct {
	policy *bluemonday.Policy
}

// NewInputSanitizer はInputSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは一切のタグ・属性を許可しないため、scriptタグはもちろん
// 装飾タグ（b, i等）もテキストのみ残して除去される。
func NewInputSanitizer() *inputSanitizer {
	return &inputSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力からHTMLタグを全て除去したプレーンテキストを返す。
// bluemondayの出力はHTMLエスケープされるため、文字数を正しく数えられるよう
// エンティティを元の文字に戻してから返す。
func (s *inputSanitizer) Sanitize(raw string) string {
	stripped := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(stripped))
}

// compile-time interface check
var _ InputSanitizerService = (*inputSanitizer)(nil)
