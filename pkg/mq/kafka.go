package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Gopher0727/GuildForge/internal/models"
)

const EventServerCreated = "server.created"

// ServerCreatedEvent 创建成功后发布的事件
type ServerCreatedEvent struct {
	Type       string    `json:"type"`
	LogID      string    `json:"log_id"`
	TemplateID string    `json:"template_id"`
	ServerName string    `json:"server_name"`
	ServerID   string    `json:"server_id"`
	InviteLink *string   `json:"invite_link,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type KafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

func NewKafkaProducer(brokers []string, topic string, logger *zap.Logger) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("启动 Sarama 生产者失败: %w", err)
	}
	return NewKafkaProducerWith(producer, topic, logger), nil
}

// NewKafkaProducerWith 使用已有的 SyncProducer（测试中传入 mocks）
func NewKafkaProducerWith(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaProducer {
	return &KafkaProducer{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

func (k *KafkaProducer) SendMessage(ctx context.Context, key string, message any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(bytes),
	}

	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("发送消息到 kafka 失败: %w", err)
	}

	k.logger.Debug("消息已写入 kafka",
		zap.String("topic", k.topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

// PublishServerCreated 以 server_id 为 key 发布，同一服务器的事件落在同一分区
func (k *KafkaProducer) PublishServerCreated(ctx context.Context, log *models.CreationLog) error {
	event := ServerCreatedEvent{
		Type:       EventServerCreated,
		LogID:      log.ID,
		TemplateID: log.TemplateID,
		ServerName: log.ServerName,
		ServerID:   log.ServerID,
		InviteLink: log.InviteLink,
		CreatedAt:  log.CreatedAt,
	}
	return k.SendMessage(ctx, log.ServerID, event)
}

func (k *KafkaProducer) Close() error {
	return k.producer.Close()
}
