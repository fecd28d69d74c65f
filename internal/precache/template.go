package precache

// workerRuntime is the static part of the generated service worker. It
// reads SW_CONFIG, precaches the manifest on install, drops cache
// partitions from older versions on activate, and dispatches fetches to
// the first matching runtime-caching rule. Written in promise style so
// it parses under conservative engines.
const workerRuntime = `/* generated by universalpwa; do not edit */
const PRECACHE = "precache-" + SW_CONFIG.version;

const ROUTES = SW_CONFIG.routes.map(function (r) {
  return {
    pattern: new RegExp(r.pattern),
    handler: r.handler,
    cacheName: r.cacheName + "-" + SW_CONFIG.version,
    networkTimeoutSeconds: r.networkTimeoutSeconds || 0,
    maxEntries: r.maxEntries || 0,
    maxAgeSeconds: r.maxAgeSeconds || 0,
    methods: r.methods || [],
    origins: r.origins || []
  };
});

const KNOWN_CACHES = [PRECACHE].concat(ROUTES.map(function (r) { return r.cacheName; }));

self.addEventListener("install", function (event) {
  event.waitUntil(
    caches.open(PRECACHE).then(function (cache) {
      return cache.addAll(SW_CONFIG.precache.map(function (e) { return e.url; }));
    }).then(function () {
      if (SW_CONFIG.skipWaiting) { return self.skipWaiting(); }
    })
  );
});

self.addEventListener("activate", function (event) {
  event.waitUntil(
    caches.keys().then(function (names) {
      return Promise.all(names.map(function (name) {
        if (KNOWN_CACHES.indexOf(name) === -1) { return caches.delete(name); }
      }));
    }).then(function () {
      if (SW_CONFIG.navigationPreload && self.registration.navigationPreload) {
        return self.registration.navigationPreload.enable();
      }
    }).then(function () {
      if (SW_CONFIG.clientsClaim) { return self.clients.claim(); }
    })
  );
});

function routeFor(request) {
  const url = new URL(request.url);
  for (let i = 0; i < ROUTES.length; i++) {
    const r = ROUTES[i];
    if (!r.pattern.test(url.pathname)) { continue; }
    if (r.methods.length && r.methods.indexOf(request.method) === -1) { continue; }
    if (r.origins.length && r.origins.indexOf(url.origin) === -1) { continue; }
    return r;
  }
  return null;
}

function isFresh(response, maxAgeSeconds) {
  if (!maxAgeSeconds) { return true; }
  const date = response.headers.get("date");
  if (!date) { return true; }
  return (Date.now() - new Date(date).getTime()) / 1000 < maxAgeSeconds;
}

function trimCache(cacheName, maxEntries) {
  if (!maxEntries) { return Promise.resolve(); }
  return caches.open(cacheName).then(function (cache) {
    return cache.keys().then(function (keys) {
      if (keys.length <= maxEntries) { return; }
      return cache.delete(keys[0]).then(function () {
        return trimCache(cacheName, maxEntries);
      });
    });
  });
}

function putAndTrim(route, request, response) {
  if (!response || !response.ok) { return Promise.resolve(); }
  const copy = response.clone();
  return caches.open(route.cacheName).then(function (cache) {
    return cache.put(request, copy);
  }).then(function () {
    return trimCache(route.cacheName, route.maxEntries);
  });
}

function fetchWithTimeout(request, seconds) {
  if (!seconds) { return fetch(request); }
  return new Promise(function (resolve, reject) {
    const timer = setTimeout(function () {
      reject(new Error("network timeout"));
    }, seconds * 1000);
    fetch(request).then(function (response) {
      clearTimeout(timer);
      resolve(response);
    }, function (err) {
      clearTimeout(timer);
      reject(err);
    });
  });
}

function cacheFirst(route, request) {
  return caches.match(request).then(function (cached) {
    if (cached && isFresh(cached, route.maxAgeSeconds)) { return cached; }
    return fetch(request).then(function (response) {
      return putAndTrim(route, request, response).then(function () { return response; });
    });
  });
}

function networkFirst(route, request) {
  return fetchWithTimeout(request, route.networkTimeoutSeconds).then(function (response) {
    return putAndTrim(route, request, response).then(function () { return response; });
  }).catch(function (err) {
    return caches.match(request).then(function (cached) {
      if (cached) { return cached; }
      throw err;
    });
  });
}

function staleWhileRevalidate(route, request) {
  return caches.match(request).then(function (cached) {
    const refresh = fetch(request).then(function (response) {
      return putAndTrim(route, request, response).then(function () { return response; });
    });
    return cached || refresh;
  });
}

function cacheOnly(route, request) {
  return caches.match(request).then(function (cached) {
    if (cached) { return cached; }
    throw new Error("not in cache: " + request.url);
  });
}

const HANDLERS = {
  CacheFirst: cacheFirst,
  NetworkFirst: networkFirst,
  StaleWhileRevalidate: staleWhileRevalidate,
  NetworkOnly: function (route, request) { return fetch(request); },
  CacheOnly: cacheOnly
};

function withFallback(promise, request) {
  return promise.catch(function (err) {
    if (request.mode === "navigate" && SW_CONFIG.fallbackPage) {
      return caches.match(SW_CONFIG.fallbackPage).then(function (page) {
        if (page) { return page; }
        throw err;
      });
    }
    if (request.destination === "image" && SW_CONFIG.fallbackImage) {
      return caches.match(SW_CONFIG.fallbackImage).then(function (img) {
        if (img) { return img; }
        throw err;
      });
    }
    throw err;
  });
}

self.addEventListener("fetch", function (event) {
  const route = routeFor(event.request);
  if (route) {
    const handler = HANDLERS[route.handler];
    if (handler) {
      event.respondWith(withFallback(handler(route, event.request), event.request));
      return;
    }
  }
  // No route matched: precached assets still resolve from the precache.
  event.respondWith(
    withFallback(
      caches.match(event.request).then(function (cached) {
        return cached || fetch(event.request);
      }),
      event.request
    )
  );
});
`
