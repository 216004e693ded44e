// Package notifications delivers death announcements to external channels.
//
// Every channel implements Notifier. The generic JSON webhook is always
// configured; ntfy and Discord are optional. NewFromConfig fans a message out
// to every configured channel and joins their failures into a single error
// tagged services.ErrNotification. Message builders keep wording in one place
// so every channel announces deaths and scores the same way.
package notifications
