package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"flux-backend/internal/task/domain"
	"flux-backend/pkg/fcm"

	"cloud.google.com/go/pubsub"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

type eventPublisher interface {
	Publish(ctx context.Context, data []byte, attrs map[string]string) error
}

// PushSender delivers a push notification to every device subscribed to topic.
type PushSender interface {
	SendToTopic(ctx context.Context, topic string, notification fcm.NotificationData) error
}

// Service fans task events out to a Pub/Sub topic and an FCM topic. Either may be
// absent. Delivery is best effort: failures are logged, never returned.
type Service struct {
	pubsubClient *pubsub.Client
	publisher    eventPublisher
	push         PushSender
	fcmTopic     string
}

// NewService connects to Pub/Sub when projectID is set, creating topicName if needed.
// push may be nil.
func NewService(ctx context.Context, projectID, topicName, credentialsFile string, push PushSender, fcmTopic string) (*Service, error) {
	s := &Service{push: push, fcmTopic: fcmTopic}
	if projectID == "" {
		log.Warn("[PubSub] GoogleProjectID not configured, task events will not be published")
		return s, nil
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	// Accept a full resource name as well as the short topic name
	if parts := strings.Split(topicName, "/"); len(parts) > 1 {
		topicName = parts[len(parts)-1]
	}
	if topicName == "" {
		topicName = "flux-task-events"
	}

	topic := client.Topic(topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to check topic %s: %w", topicName, err)
	}
	if !exists {
		if topic, err = client.CreateTopic(ctx, topicName); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to create topic %s: %w", topicName, err)
		}
		log.Infof("[PubSub] Created topic: %s", topicName)
	}

	s.pubsubClient = client
	s.publisher = &pubsubTopic{topic: topic}
	log.Infof("[PubSub] Publishing task events to topic: %s", topicName)
	return s, nil
}

// Notify publishes ev and pushes a notification for it.
func (s *Service) Notify(ctx context.Context, ev domain.TaskEvent) {
	entry := log.WithFields(log.Fields{"task_id": ev.TaskID, "event": ev.Type})

	if s.publisher != nil {
		data, err := json.Marshal(ev)
		if err != nil {
			entry.WithError(err).Error("[PubSub] Failed to encode task event")
		} else if err := s.publisher.Publish(ctx, data, map[string]string{
			"type":    string(ev.Type),
			"task_id": ev.TaskID,
		}); err != nil {
			entry.WithError(err).Warn("[PubSub] Failed to publish task event")
		} else {
			entry.Debug("[PubSub] Published task event")
		}
	}

	if s.push != nil && s.fcmTopic != "" {
		if err := s.push.SendToTopic(ctx, s.fcmTopic, PushFor(ev)); err != nil {
			entry.WithError(err).Warn("[FCM] Failed to push task event")
		}
	}
}

// PushFor renders the push notification for a task event.
func PushFor(ev domain.TaskEvent) fcm.NotificationData {
	n := fcm.NotificationData{
		Data: map[string]string{
			"type":    string(ev.Type),
			"task_id": ev.TaskID,
			"status":  string(ev.Status),
		},
		ClickAction: "/tasks/" + ev.TaskID,
	}
	switch ev.Type {
	case domain.EventTaskStatusChanged:
		n.Title = fmt.Sprintf("Task moved to %s", ev.Status)
		n.Body = fmt.Sprintf("%s (was %s)", ev.Name, ev.PreviousStatus)
		n.Data["previous_status"] = string(ev.PreviousStatus)
	default:
		n.Title = fmt.Sprintf("New %s task", ev.Category)
		n.Body = ev.Name
	}
	return n
}

func (s *Service) Close() error {
	if t, ok := s.publisher.(*pubsubTopic); ok {
		t.topic.Stop()
	}
	if s.pubsubClient != nil {
		return s.pubsubClient.Close()
	}
	return nil
}

type pubsubTopic struct {
	topic *pubsub.Topic
}

func (p *pubsubTopic) Publish(ctx context.Context, data []byte, attrs map[string]string) error {
	res := p.topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs})
	_, err := res.Get(ctx)
	return err
}
