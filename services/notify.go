package services

import (
	"catalog/builders"
	"catalog/commands"
	"catalog/services/notification"
)

// notifyCommand dựng lệnh gửi thông báo cá nhân cho một người nhận
func notifyCommand(svc notification.Service, userID, role, preference, title, content, path string) commands.Command {
	n := builders.NewNotificationBuilder(preference).
		WithTitle(title).
		WithContent(content).
		WithTargets(userID).
		WithPath(path).
		Build()
	return commands.NewNotifyCommand(svc, notification.Recipient{UserID: userID, Role: role}, preference, n)
}
