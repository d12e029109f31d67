// Package email sends transactional mail for lifecycle notifications.
//
// Sender is implemented by the Postmark backed sender for deployed
// environments and by DevSender, which writes each message to disk so local
// runs never reach a mail provider. Message bodies are rendered from templ
// components in the templates subpackage.
package email
