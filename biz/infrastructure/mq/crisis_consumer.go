package mq

import (
	"encoding/json"
	"github.com/bytedance/gopkg/util/gopool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xh-polaris/gopkg/util/log"
	"golang.org/x/net/context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/profile"
)

// CrisisConsumer 消费危机记录消息并更新用户档案计数
// 属于不阻塞主响应的后台簿记, 失败时重新入队
type CrisisConsumer struct {
	conn   *amqp.Connection
	finish chan struct{}
}

// NewCrisisConsumer 创建一个消费者
func NewCrisisConsumer() *CrisisConsumer {
	return &CrisisConsumer{
		conn:   getConn(),
		finish: make(chan struct{}),
	}
}

// Consume 启动消费者
func Consume() {
	consumer := NewCrisisConsumer()
	consumer.Start()
}

// Start 开始消费
func (c *CrisisConsumer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 启动消息处理
	gopool.CtxGo(ctx, func() {
		c.consume(ctx)
	})
	// 处理系统信号
	gopool.CtxGo(ctx, func() {
		c.osSignalHandler(ctx)
		c.finish <- struct{}{}
	})

	<-c.finish
}

// 消费信息
func (c *CrisisConsumer) consume(ctx context.Context) {
	ch, err := c.conn.Channel()
	if err != nil {
		log.Error("get channel error:", err)
		return
	}
	defer func() { _ = ch.Close() }()
	err = ch.Qos(1, 0, false)
	if err != nil {
		log.Error("set qos error:", err)
		return
	}
	msgs, err := ch.Consume(crisisQueue, "crisis_consumer", false, false, false, false, nil)
	if err != nil {
		log.Error("get consume error:", err)
		return
	}

	for msg := range msgs {
		if err = c.process(ctx, msg); err != nil {
			// 失败时拒绝并重试
			log.Error("处理失败，消息重新入队:", err)
			if err = msg.Nack(false, true); err != nil {
				log.Error("nack失败 ", err)
			}
		} else if err = msg.Ack(false); err != nil {
			log.Error("ack失败 ", err)
		}
	}
}

// osSignalHandler 处理os信号
func (c *CrisisConsumer) osSignalHandler(ctx context.Context) {
	log.CtxInfo(ctx, "[osSignalHandler] start")
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	osSignal := <-ch
	log.CtxInfo(ctx, "[osSignalHandler] receive signal:[%v]", osSignal)
}

// process 实际消费逻辑: 更新用户档案的危机计数
func (c *CrisisConsumer) process(ctx context.Context, msg amqp.Delivery) error {
	var m map[string]interface{}
	if err := json.Unmarshal(msg.Body, &m); err != nil {
		return err
	}

	userId, _ := m["userId"].(string)
	eventId, _ := m["eventId"].(string)
	detectedAt, _ := m["detectedAt"].(float64)
	if userId == "" {
		// 无法溯源的消息直接丢弃
		log.CtxInfo(ctx, "[crisis_consumer] drop message without userId, eventId=%s", eventId)
		return nil
	}

	mapper := profile.GetMongoMapper()
	return mapper.IncrementCrisis(ctx, userId, time.Unix(int64(detectedAt), 0))
}
