package constants

type NotificationType string

const (
	NotificationApplicationReceived  NotificationType = "application_received"
	NotificationApplicationAccepted  NotificationType = "application_accepted"
	NotificationApplicationRejected  NotificationType = "application_rejected"
	NotificationApplicationWithdrawn NotificationType = "application_withdrawn"
	NotificationTaskCompleted        NotificationType = "task_completed"
	NotificationTaskCancelled        NotificationType = "task_cancelled"
	NotificationNewMessage           NotificationType = "new_message"
	NotificationNewReview            NotificationType = "new_review"
)

// Title is the short human readable heading stored with each notification.
func (t NotificationType) Title() string {
	switch t {
	case NotificationApplicationReceived:
		return "New Application"
	case NotificationApplicationAccepted:
		return "Application Accepted"
	case NotificationApplicationRejected:
		return "Application Rejected"
	case NotificationApplicationWithdrawn:
		return "Application Withdrawn"
	case NotificationTaskCompleted:
		return "Task Completed"
	case NotificationTaskCancelled:
		return "Task Cancelled"
	case NotificationNewMessage:
		return "New Message"
	case NotificationNewReview:
		return "New Review Received"
	}
	return "Notification"
}
