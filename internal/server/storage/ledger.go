package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// LobbyRoom 大厅台账中的房间记录
type LobbyRoom struct {
	ID        string `gorm:"primaryKey;size:64"`
	Code      string `gorm:"size:16;index"`
	Name      string `gorm:"size:128"`
	Stake     int
	Private   bool
	Variant   string `gorm:"size:32"`
	OwnerID   string `gorm:"size:64"`
	Status    string `gorm:"size:16;index;not null;default:waiting"`
	Members   []LobbyMember `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LobbyMember 房间成员记录
type LobbyMember struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	RoomID   string `gorm:"size:64;uniqueIndex:idx_room_player"`
	PlayerID string `gorm:"size:64;uniqueIndex:idx_room_player"`
	Name     string `gorm:"size:128"`
	Seat     int
	JoinedAt time.Time
}

// LobbyLedger 关系库中的房间/成员台账。
//
// 只由实时路径单向写入，对外只读。对局进行中（full / playing）以内存中的房间为准，
// 台账只服务于开局前的大厅浏览。db 为 nil 时所有操作为空操作。
type LobbyLedger struct {
	db *gorm.DB
}

// NewLobbyLedger 用已打开的连接创建台账并迁移表结构
func NewLobbyLedger(db *gorm.DB) (*LobbyLedger, error) {
	if db == nil {
		return &LobbyLedger{}, nil
	}
	if err := db.AutoMigrate(&LobbyRoom{}, &LobbyMember{}); err != nil {
		return nil, fmt.Errorf("迁移大厅台账失败: %w", err)
	}
	return &LobbyLedger{db: db}, nil
}

// OpenPostgres 打开 postgres 连接，dsn 为空返回 nil
func OpenPostgres(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, nil
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	return db, nil
}

// Enabled 是否启用
func (l *LobbyLedger) Enabled() bool {
	return l != nil && l.db != nil
}

// SyncRoom 以实时房间状态覆盖台账中的房间及其全部成员
func (l *LobbyLedger) SyncRoom(ctx context.Context, room LobbyRoom, members []LobbyMember) error {
	if !l.Enabled() {
		return nil
	}

	room.Members = nil
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&room).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", room.ID).Delete(&LobbyMember{}).Error; err != nil {
			return err
		}
		if len(members) == 0 {
			return nil
		}
		for i := range members {
			members[i].ID = 0
			members[i].RoomID = room.ID
		}
		return tx.Create(&members).Error
	})
}

// DeleteRoom 删除房间及成员
func (l *LobbyLedger) DeleteRoom(ctx context.Context, roomID string) error {
	if !l.Enabled() {
		return nil
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&LobbyMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&LobbyRoom{ID: roomID}).Error
	})
}

// ListOpenRooms 开局前可浏览的公开房间（只含 waiting 状态且未满）
func (l *LobbyLedger) ListOpenRooms(ctx context.Context) ([]LobbyRoom, error) {
	if !l.Enabled() {
		return []LobbyRoom{}, nil
	}

	var rooms []LobbyRoom
	err := l.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("seat") }).
		Where("status = ? AND private = ?", "waiting", false).
		Order("created_at").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}

	open := rooms[:0]
	for _, r := range rooms {
		if len(r.Members) < 4 {
			open = append(open, r)
		}
	}
	return open, nil
}

// GetRoom 读取单个房间，不存在返回 nil, nil
func (l *LobbyLedger) GetRoom(ctx context.Context, roomID string) (*LobbyRoom, error) {
	if !l.Enabled() {
		return nil, nil
	}

	var room LobbyRoom
	err := l.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("seat") }).
		First(&room, "id = ?", roomID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

// Reset 清空台账。进程启动时调用：内存中的房间不跨进程存活
func (l *LobbyLedger) Reset(ctx context.Context) error {
	if !l.Enabled() {
		return nil
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&LobbyMember{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&LobbyRoom{}).Error
	})
}
