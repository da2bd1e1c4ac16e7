package service

import (
	"context"
	"crypto/subtle"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/mc-community/internal/errors"
	"github.com/wfunc/mc-community/internal/models"
	"github.com/wfunc/mc-community/internal/repository"
	"go.uber.org/zap"
)

// AdminChatUserID 管理员令牌对应的用户ID
const AdminChatUserID = "admin"

type chatService struct {
	tokens     repository.ChatTokenRepository
	ttl        time.Duration
	adminToken string
	now        func() time.Time
	log        *zap.Logger
}

// NewChatService 创建聊天服务
func NewChatService(tokens repository.ChatTokenRepository, config *Config, log *zap.Logger) ChatService {
	if config == nil {
		config = DefaultConfig()
	}
	ttl := config.ChatTokenTTL
	if ttl <= 0 {
		ttl = DefaultConfig().ChatTokenTTL
	}
	return &chatService{
		tokens:     tokens,
		ttl:        ttl,
		adminToken: config.ChatAdminToken,
		now:        time.Now,
		log:        log.Named("chat"),
	}
}

// VerifyToken 校验聊天令牌。配置了管理员令牌时，该令牌直接通过
func (s *chatService) VerifyToken(ctx context.Context, token string) (*ChatUser, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New(errors.ErrInvalidParam, "Missing token")
	}

	if s.adminToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) == 1 {
		return &ChatUser{ID: AdminChatUserID, Name: "Admin", Admin: true}, nil
	}

	t, err := s.tokens.FindValid(ctx, token, s.now())
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.New(errors.ErrChatTokenInvalid)
		}
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}

	return &ChatUser{ID: t.DiscordID, Name: t.DiscordName}, nil
}

// IssueToken 签发新令牌，同一用户的旧令牌被替换
func (s *chatService) IssueToken(ctx context.Context, discordID, discordName string) (*models.ChatToken, error) {
	discordID = strings.TrimSpace(discordID)
	discordName = strings.TrimSpace(discordName)
	if discordID == "" || discordName == "" {
		return nil, errors.New(errors.ErrInvalidParam, "discord_id和discord_name不能为空")
	}

	t := &models.ChatToken{
		Token:       uuid.NewString(),
		DiscordID:   discordID,
		DiscordName: discordName,
		ExpiresAt:   s.now().Add(s.ttl),
	}
	if err := s.tokens.Issue(ctx, t); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseInsert)
	}

	s.log.Info("签发聊天令牌",
		zap.String("discord_id", discordID),
		zap.Time("expires_at", t.ExpiresAt),
	)
	return t, nil
}

func (s *chatService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrDatabaseUpdate)
	}
	if n > 0 {
		s.log.Info("清理过期聊天令牌", zap.Int64("count", n))
	}
	return n, nil
}
