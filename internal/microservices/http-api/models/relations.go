package models

import "time"

type Favorite struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_favorite_pair"`
	RecipeID  int64     `json:"recipe_id" gorm:"not null;index;uniqueIndex:idx_favorite_pair"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Associations
	User   *User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Recipe *Recipe `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;"`
}

func (Favorite) TableName() string {
	return "favorites"
}

type ShoppingCartEntry struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_shopping_cart_pair"`
	RecipeID  int64     `json:"recipe_id" gorm:"not null;index;uniqueIndex:idx_shopping_cart_pair"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	User   *User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Recipe *Recipe `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;"`
}

func (ShoppingCartEntry) TableName() string {
	return "shopping_cart"
}

type Subscription struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	FollowerID  string    `json:"follower_id" gorm:"type:uuid;not null;uniqueIndex:idx_subscription_pair;check:chk_subscription_not_self,follower_id <> following_id"`
	FollowingID string    `json:"following_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_subscription_pair"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	Follower  *User `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE;"`
	Following *User `json:"-" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE;"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// RelationKind describes one uniquely keyed owner→target join table.
type RelationKind struct {
	Name         string
	Table        string
	OwnerColumn  string
	TargetColumn string
	// ForbidSelf rejects owner == target. Only meaningful when both ends
	// are users.
	ForbidSelf bool
}

var (
	FavoriteRelation = RelationKind{
		Name: "favorite", Table: "favorites",
		OwnerColumn: "user_id", TargetColumn: "recipe_id",
	}
	ShoppingCartRelation = RelationKind{
		Name: "shopping_cart", Table: "shopping_cart",
		OwnerColumn: "user_id", TargetColumn: "recipe_id",
	}
	SubscriptionRelation = RelationKind{
		Name: "subscription", Table: "subscriptions",
		OwnerColumn: "follower_id", TargetColumn: "following_id",
		ForbidSelf: true,
	}
)

// Relation is the record returned when a relation is added.
type Relation[T comparable] struct {
	Kind      string    `json:"kind"`
	OwnerID   string    `json:"owner_id"`
	TargetID  T         `json:"target_id"`
	CreatedAt time.Time `json:"created_at"`
}
