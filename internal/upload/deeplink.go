package upload

import (
	"fmt"
	"strconv"
	"strings"
)

// channelPrefix marks supergroup and channel ids in the Bot API.
const channelPrefix = "-100"

// DeepLink returns the URL of a message inside a chat,
// https://<host>/c/<chat>/<message>, with the "-100" prefix of
// supergroup and channel ids stripped.
func DeepLink(host string, chatID int64, messageID int) string {
	id := strconv.FormatInt(chatID, 10)
	id = strings.TrimPrefix(id, channelPrefix)
	return fmt.Sprintf("https://%s/c/%s/%d", host, id, messageID)
}
