package redis

import "github.com/redis/go-redis/v9"

// listScript reads a range of a collection index and the matching documents.
// Missing documents come back as nil entries.
//
//	KEYS[1] index   ARGV[1] document prefix   ARGV[2] "1" for reverse   ARGV[3] stop
var listScript = redis.NewScript(`
local ids
if ARGV[2] == '1' then
  ids = redis.call('ZREVRANGE', KEYS[1], 0, ARGV[3])
else
  ids = redis.call('ZRANGE', KEYS[1], 0, ARGV[3])
end

local out = {}
for i = 1, #ids, 500 do
  local keys = {}
  for j = i, math.min(i + 499, #ids) do
    keys[#keys + 1] = ARGV[1] .. ids[j]
  end
  local vals = redis.call('MGET', unpack(keys))
  for k = 1, #keys do
    out[#out + 1] = vals[k]
  end
end
return out
`)

// resolveScript probes the scenario lookup hashes in order and returns the
// first scenario document found, or nil.
//
//	KEYS lookup hashes   ARGV[1] folded needle   ARGV[2] document prefix
var resolveScript = redis.NewScript(`
for i = 1, #KEYS do
  local name = redis.call('HGET', KEYS[i], ARGV[1])
  if name then
    local doc = redis.call('GET', ARGV[2] .. name)
    if doc then
      return doc
    end
  end
end
return false
`)

// pruneScript drops index members whose document no longer exists and
// returns how many were removed.
//
//	KEYS[1] index   ARGV[1] document prefix
var pruneScript = redis.NewScript(`
local removed = 0
local ids = redis.call('ZRANGE', KEYS[1], 0, -1)
for _, id in ipairs(ids) do
  if redis.call('EXISTS', ARGV[1] .. id) == 0 then
    redis.call('ZREM', KEYS[1], id)
    removed = removed + 1
  end
end
return removed
`)

// pruneLookupScript drops lookup hash fields pointing at a scenario that no
// longer exists.
//
//	KEYS lookup hashes   ARGV[1] document prefix
var pruneLookupScript = redis.NewScript(`
local removed = 0
for i = 1, #KEYS do
  local entries = redis.call('HGETALL', KEYS[i])
  for j = 1, #entries, 2 do
    if redis.call('EXISTS', ARGV[1] .. entries[j + 1]) == 0 then
      redis.call('HDEL', KEYS[i], entries[j])
      removed = removed + 1
    end
  end
end
return removed
`)
