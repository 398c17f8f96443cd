package meeting

// Cost は会議の総コストを計算する。
// 式は attendees × hourlyRate × durationMinutes / 60。内部では丸めを行わない。
// 表示用の丸め・通貨フォーマットはUI側の責務とする。
//
// DB側のtotal_cost生成列と同一の式であり、入力プレビュー値と保存値は
// 常に一致しなければならない。
//
// 入力はバリデーション済み（参加者数・会議時間は1以上）であることを
// 呼び出し側が保証する。
func Cost(attendees int, hourlyRate float64, durationMinutes int) float64 {
	return float64(attendees) * hourlyRate * float64(durationMinutes) / 60
}
