package encoder

import "github.com/jittakal/podstats/pkg/download"

// sampleEvents returns two download events, the second bot-classified
// with an unparseable time.
func sampleEvents() []download.Event {
	return []download.Event{
		{
			Time:            "2024-03-05T14:07:09.123Z",
			ServerURL:       "https://dl.example.com",
			AudienceID:      "aud-1",
			ShowUUID:        "0123456789abcdef0123456789abcdef",
			EpisodeID:       "ep-1",
			HashedIPAddress: "h1",
			AgentType:       "app",
			AgentName:       "Overcast",
			DeviceType:      "mobile",
			DeviceName:      "iPhone",
			CountryCode:     "US",
			ContinentCode:   "NA",
			RegionCode:      "CA",
			RegionName:      "California",
			Timezone:        "America/Los_Angeles",
			MetroCode:       "807",
		},
		{
			Time:       "not-a-time",
			ShowUUID:   "0123456789abcdef0123456789abcdef",
			EpisodeID:  "ep-2",
			AgentType:  "bot",
			AgentName:  "Googlebot",
			BotType:    "crawler",
			ServerURL:  "https://dl.example.com",
			AudienceID: "aud-2",
		},
	}
}
