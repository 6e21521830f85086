package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"rag-assistant-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub           *gochannel.GoChannel
	topicName        string
	ingestionService IIngestionService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	ingestionService IIngestionService,
) IConsumerService {
	return &consumerService{
		pubSub:           pubSub,
		topicName:        topicName,
		ingestionService: ingestionService,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing ingestion for DocumentId: %s", payload.DocumentId)

	if err := cs.ingestionService.ProcessDocument(ctx, payload.DocumentId); err != nil {
		if errors.Is(err, ErrPermanent) {
			log.Printf("[ERROR] Permanent failure for document %s: %v", payload.DocumentId, err)
			msg.Ack() // Retrying cannot fix it
			return
		}
		log.Printf("[ERROR] Failed to process document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	msg.Ack()
}
