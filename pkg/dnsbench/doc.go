/*
Package dnsbench contains functionality for ranking DNS resolvers by lookup latency and reliability.
Candidate resolvers are gathered by Runner from the host configuration (see Discoverer), well-known public
resolvers and user supplied addresses. Each resolver is then measured by Benchmark.Run, which resolves
every test domain against it through a LookupExecutor and summarizes the results into ServerStats.
*/
package dnsbench
