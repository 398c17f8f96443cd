// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/meetcost/internal/model"
)

// MeetingRepository は会議データの永続化インターフェース。
//
// total_costはDB側の生成列で導出されるため、CreateとUpdateは
// 書き込み後の（total_costを含む）確定値を引数のMeetingに反映して返す。
type MeetingRepository interface {
	// Create は会議を作成し、DB側で確定したtotal_cost・created_at・updated_atを
	// meetingに書き戻す。
	Create(ctx context.Context, meeting *model.Meeting) error

	// FindByID は指定IDの会議を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Meeting, error)

	// Update は会議を上書き更新し、再導出されたtotal_costとupdated_atを
	// meetingに書き戻す。
	Update(ctx context.Context, meeting *model.Meeting) error

	// Delete は指定IDの会議を削除する。対象が存在しない場合はエラーを返す。
	Delete(ctx context.Context, id string) error

	// ListByUserID はユーザーの会議一覧をcreated_at降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]model.Meeting, error)
}

// ProfileRepository はユーザープロフィールの永続化インターフェース。
type ProfileRepository interface {
	// FindByID は指定IDのプロフィールを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Profile, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
// セッションの発行・破棄は外部の認証基盤が行うため、本体は検索のみを提供する。
type SessionRepository interface {
	// FindByID は指定IDのセッションを取得する。
	// 見つからない場合および期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
}
