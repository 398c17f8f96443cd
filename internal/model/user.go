// Package model はドメインモデルを定義する。
package model

import "time"

// Profile はサービス利用ユーザーのプロフィールを表す。
// 通貨とデフォルト時給は会議作成時の既定値として参照される。
type Profile struct {
	ID                string
	Email             string
	FullName          string
	Currency          string
	DefaultHourlyRate float64
	CompanyName       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Session はユーザーのログインセッションを表す。
// 認証フロー自体は外部のIdPに委ねており、本体はセッションIDからの
// ユーザーID解決のみを行う。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
