package redis

const (
	// KeyPrefix namespaces every key written by the store.
	KeyPrefix = "pmstd:"

	// KeyPrefixTopic is the prefix for topic documents
	KeyPrefixTopic = KeyPrefix + "topic:"
	// KeyPrefixScenario is the prefix for scenario documents
	KeyPrefixScenario = KeyPrefix + "scenario:"
	// KeyPrefixBookmark is the prefix for bookmark documents
	KeyPrefixBookmark = KeyPrefix + "bookmark:"

	// KeyAllTopics is the sorted set of all topic keys
	KeyAllTopics = KeyPrefix + "topics:all"
	// KeyAllScenarios is the sorted set of all scenario names
	KeyAllScenarios = KeyPrefix + "scenarios:all"
	// KeyAllBookmarks is the sorted set of all bookmark ids, scored by creation time
	KeyAllBookmarks = KeyPrefix + "bookmarks:all"

	// Scenario lookup hashes: lower-cased field value -> scenario name.
	KeyScenariosByType  = KeyPrefix + "scenarios:by-type"
	KeyScenariosByName  = KeyPrefix + "scenarios:by-name"
	KeyScenariosByTitle = KeyPrefix + "scenarios:by-title"
)

// TopicKey returns the Redis key for a topic
func TopicKey(key string) string {
	return KeyPrefixTopic + key
}

// ScenarioKey returns the Redis key for a scenario
func ScenarioKey(name string) string {
	return KeyPrefixScenario + name
}

// BookmarkKey returns the Redis key for a bookmark
func BookmarkKey(id string) string {
	return KeyPrefixBookmark + id
}

// scenarioLookupKeys lists the lookup hashes in match priority order.
func scenarioLookupKeys() []string {
	return []string{KeyScenariosByType, KeyScenariosByName, KeyScenariosByTitle}
}
