// Command e621bot runs the Telegram search bot. The default mode long-polls
// Telegram for updates; with a public URL configured it can instead serve
// webhook deliveries over HTTP. Webhook registration is managed through the
// `webhook` subcommands.
package main

func main() {
	Execute()
}
