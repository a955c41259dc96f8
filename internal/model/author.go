// Package model はドメインモデルを定義する。
package model

import "time"

// AuthorIDPrefix は決定論的なAuthor IDの名前空間プレフィックス。
// 外部IdPの安定IDと組み合わせて "author.github.<provider_user_id>" 形式のIDを構成する。
const AuthorIDPrefix = "author.github."

// Author は外部IdPのアイデンティティに紐付くプロフィールレコードを表す。
// IDはプロバイダーの安定IDから決定論的に導出されるため、
// 同一アイデンティティに対して複数レコードが作られることはない。
type Author struct {
	ID             string
	ProviderUserID string
	Name           string
	Username       string
	Email          string
	ImageURL       string
	Bio            string
	CreatedAt      time.Time
}

// DeriveAuthorID は外部IdPの安定IDから内部Author IDを決定論的に導出する。
func DeriveAuthorID(providerUserID string) string {
	return AuthorIDPrefix + providerUserID
}
